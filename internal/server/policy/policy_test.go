package policy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/changes"
	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/upload"
)

func testEngine(t *testing.T, p upload.Policy, signer *changes.Signer) *upload.Engine {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := &changes.Manifest{Source: "hello", Version: "1.0-1", Signer: signer}
	target := &archive.Archive{ID: 1, Distribution: "ubuntu", Name: "primary", Purpose: archive.PurposePrimary}
	return upload.New(logger, m, p, target, upload.Stores{})
}

func TestForName(t *testing.T) {
	for _, name := range []string{"insecure", "buildd", "sync", "ppa"} {
		p, err := ForName(name, "")
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	_, err := ForName("bogus", "")
	require.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		policy   upload.Policy
		source   bool
		binaries bool
	}{
		{Insecure{}, true, false},
		{Buildd{}, false, true},
		{Sync{}, true, false},
		{PPA{}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.policy.Name(), func(t *testing.T) {
			assert.Equal(t, tt.source, tt.policy.CanUploadSource())
			assert.Equal(t, tt.binaries, tt.policy.CanUploadBinaries())
			assert.False(t, tt.policy.CanUploadMixed())
		})
	}
}

func TestInsecure_RejectsUnsigned(t *testing.T) {
	p := Insecure{}

	e := testEngine(t, p, nil)
	p.CheckUpload(context.Background(), e)
	assert.True(t, e.IsRejected())

	e = testEngine(t, p, &changes.Signer{Fingerprint: "ABCDEF"})
	p.CheckUpload(context.Background(), e)
	assert.False(t, e.IsRejected())
}

func TestInsecure_AutoApprovesReleasePocket(t *testing.T) {
	p := Insecure{}
	e := testEngine(t, p, &changes.Signer{Fingerprint: "ABCDEF"})
	assert.True(t, p.AutoApprove(e), "the default pocket is Release")
}

func TestSync_WarnsOnSignature(t *testing.T) {
	p := Sync{}

	e := testEngine(t, p, &changes.Signer{Fingerprint: "ABCDEF"})
	p.CheckUpload(context.Background(), e)
	assert.False(t, e.IsRejected())
	assert.Contains(t, e.WarningMessage(), "ignoring the signature")

	e = testEngine(t, p, nil)
	p.CheckUpload(context.Background(), e)
	assert.False(t, e.IsRejected())
	assert.Empty(t, e.WarningMessage())
}

func TestPPA_RequiresSignature(t *testing.T) {
	p := PPA{}

	e := testEngine(t, p, nil)
	p.CheckUpload(context.Background(), e)
	assert.True(t, e.IsRejected())
}

func TestAnnounceList(t *testing.T) {
	p, err := ForName("insecure", "questing-changes@example.com")
	require.NoError(t, err)
	assert.Equal(t, "questing-changes@example.com", p.AnnounceList())

	p, err = ForName("buildd", "questing-changes@example.com")
	require.NoError(t, err)
	assert.Empty(t, p.AnnounceList(), "only the insecure pathway announces")
}
