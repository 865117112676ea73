package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, filename, section string) *UploadedFile {
	t.Helper()
	f := &UploadedFile{Filename: filename}
	require.NoError(t, classifyFile(f, section))
	return f
}

func TestClassifyFile_Binary(t *testing.T) {
	f := classify(t, "hello_1.0-1_amd64.deb", "devel")
	assert.Equal(t, KindBinary, f.Kind)
	assert.Equal(t, "hello", f.Package)
	assert.Equal(t, "1.0-1", f.Version)
	assert.Equal(t, "amd64", f.Architecture)

	f = classify(t, "hello-udeb_1.0-1_all.udeb", "debian-installer")
	assert.Equal(t, KindBinary, f.Kind)
	assert.Equal(t, "all", f.Architecture)

	f = classify(t, "hello-dbgsym_1.0-1_amd64.ddeb", "debug")
	assert.Equal(t, KindBinary, f.Kind)
}

func TestClassifyFile_Source(t *testing.T) {
	for _, name := range []string{
		"hello_1.0-1.dsc",
		"hello_1.0-1.diff.gz",
		"hello_1.0.orig.tar.gz",
		"hello_1.0-1.debian.tar.xz",
		"hello_1.0.tar.bz2",
	} {
		f := classify(t, name, "devel")
		assert.Equal(t, KindSource, f.Kind, name)
		assert.Equal(t, "hello", f.Package, name)
	}
}

func TestClassifyFile_Custom(t *testing.T) {
	f := classify(t, "translations_main.tar.gz", "raw-translations")
	assert.Equal(t, KindCustom, f.Kind)
	assert.Equal(t, "raw-translations", f.CustomFormat)

	f = classify(t, "installer.tar.gz", "byhand")
	assert.Equal(t, KindCustom, f.Kind)
}

func TestClassifyFile_Unrecognized(t *testing.T) {
	f := &UploadedFile{Filename: "mystery.bin"}
	require.Error(t, classifyFile(f, "devel"))
}

func TestCheckName(t *testing.T) {
	f := &UploadedFile{Filename: "hello_1.0-1.dsc"}
	assert.Empty(t, f.CheckName())

	for _, bad := range []string{
		"hello world.dsc",
		"hello;rm.dsc",
		"../escape.dsc",
		".hidden",
	} {
		f := &UploadedFile{Filename: bad}
		diags := f.CheckName()
		require.True(t, HasRejection(diags), bad)
		assert.Contains(t, diags[0].Message, "Tainted filename")
	}
}

func TestSourceFileVariants(t *testing.T) {
	dsc := classify(t, "hello_1.0-1.dsc", "devel")
	assert.True(t, dsc.IsDSC())
	assert.False(t, dsc.IsDiff())

	diff := classify(t, "hello_1.0-1.diff.gz", "devel")
	assert.True(t, diff.IsDiff())

	orig := classify(t, "hello_1.0.orig.tar.gz", "devel")
	assert.True(t, orig.IsOrig())
	assert.False(t, orig.IsNativeTar(), "an orig tarball is not native")

	native := classify(t, "hello_1.0.tar.xz", "devel")
	assert.True(t, native.IsNativeTar())

	debianTar := classify(t, "hello_1.0-1.debian.tar.xz", "devel")
	assert.False(t, debianTar.IsNativeTar(), "a debian tarball is not native")
	assert.False(t, debianTar.IsOrig())
}

func TestFilesOfKind(t *testing.T) {
	m := &Manifest{Files: []*UploadedFile{
		{Filename: "a.dsc", Kind: KindSource},
		{Filename: "b.deb", Kind: KindBinary},
		{Filename: "c.tar.gz", Kind: KindCustom},
		{Filename: "d.tar.gz", Kind: KindSource},
	}}

	assert.Len(t, m.SourceFiles(), 2)
	assert.Len(t, m.BinaryFiles(), 1)
	assert.Len(t, m.CustomFiles(), 1)
}
