package config

import (
	"flag"
	"os"

	"github.com/dpetrovs/archivegate/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-D string   distribution name
//	-A string   default target archive name
//	-P string   default upload policy
//	-l string   announce list address
//	-f string   sender (From) address for notices
//	-k string   uploader keyring path
//	-i string   incoming spool directory
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-D", "-A", "-P", "-l", "-f", "-k", "-i",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Distribution, "D", config.Distribution, "distribution name")
	fs.StringVar(&config.ArchiveName, "A", config.ArchiveName, "default target archive")
	fs.StringVar(&config.PolicyName, "P", config.PolicyName, "default upload policy")
	fs.StringVar(&config.AnnounceList, "l", config.AnnounceList, "announce list address")
	fs.StringVar(&config.SenderAddress, "f", config.SenderAddress, "sender address for notices")
	fs.StringVar(&config.KeyringPath, "k", config.KeyringPath, "uploader keyring path")
	fs.StringVar(&config.IncomingDir, "i", config.IncomingDir, "incoming spool directory")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
