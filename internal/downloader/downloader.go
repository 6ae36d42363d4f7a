package downloader

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/storage"
	"github.com/5l1v3r1/sw/internal/swerr"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// InstallStore is the subset of servicedb.DB the downloader needs.
type InstallStore interface {
	IsInstalled(id pkg.Id) bool
	InstallPackage(id pkg.Id, hash string, flags pkg.Flags, installedTime int64) error
}

// Downloader fetches, verifies, and unpacks resolved packages into storage.
type Downloader struct {
	layout *storage.Layout
	locks  *storage.PackageLocks
	db     InstallStore
	http   *resty.Client
}

// New builds a Downloader against layout, using locks to serialize
// per-package operations and http to fetch archives.
func New(layout *storage.Layout, locks *storage.PackageLocks, db InstallStore, http *resty.Client) *Downloader {
	return &Downloader{layout: layout, locks: locks, db: db, http: http}
}

// DownloadAll fetches every dependency not already installed. Distinct
// packages download concurrently; a per-PackageId lock deduplicates
// repeated requests for the same package within one build.
func (d *Downloader) DownloadAll(ctx context.Context, deps []pkg.DownloadDependency) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range deps {
		dep := dep
		g.Go(func() error {
			return d.downloadOne(gctx, dep)
		})
	}
	return g.Wait()
}

func (d *Downloader) downloadOne(ctx context.Context, dep pkg.DownloadDependency) error {
	logger := ctxlog.FromContext(ctx)
	id := dep.Id()

	mu := d.locks.For(id)
	mu.Lock()
	defer mu.Unlock()

	if d.db.IsInstalled(id) {
		logger.Debug("downloader: already installed, skipping", "package", id.String())
		return nil
	}

	archivePath, err := d.fetch(ctx, dep)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	if err := verifyHash(archivePath, dep.Resolved.ArchiveHash); err != nil {
		return err
	}

	if err := d.unpack(archivePath, id); err != nil {
		return err
	}

	logger.Info("downloader: installed", "package", id.String())
	return d.db.InstallPackage(id, dep.Resolved.Hash, dep.Resolved.Flags, time.Now().Unix())
}

// fetch downloads dep's archive to a temp file under the storage tmp
// subtree and returns its path.
func (d *Downloader) fetch(ctx context.Context, dep pkg.DownloadDependency) (string, error) {
	if err := os.MkdirAll(d.layout.TmpDir(), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(d.layout.TmpDir(), dep.Id().String()+"-*.archive")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	tmp.Close()

	res, err := d.http.R().
		SetContext(ctx).
		SetOutputFileName(path).
		Get(dep.Resolved.ArchiveURL)
	if err != nil {
		os.Remove(path)
		return "", swerr.New(swerr.ArchiveCorrupt, dep.Id().String(), err)
	}
	if res.IsError() {
		os.Remove(path)
		return "", swerr.New(swerr.ArchiveCorrupt, dep.Id().String(),
			fmt.Errorf("download returned status %d", res.StatusCode()))
	}
	return path, nil
}

// verifyHash aborts with HashMismatch if the archive's content hash
// doesn't match what the registry declared.
func verifyHash(path, wantHex string) error {
	if wantHex == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != wantHex {
		return swerr.New(swerr.HashMismatch, path, fmt.Errorf("got %s, want %s", got, wantHex))
	}
	return nil
}

// unpack extracts the tar.gz archive at archivePath into a staging
// directory, then renames it into place atomically. Any failure removes
// the staging directory.
func (d *Downloader) unpack(archivePath string, id pkg.Id) error {
	final := d.layout.SourceDir(id)
	staging := final + ".staging"
	os.RemoveAll(staging)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return err
	}

	if err := extractTarGz(archivePath, staging); err != nil {
		os.RemoveAll(staging)
		return swerr.New(swerr.ArchiveCorrupt, id.String(), err)
	}

	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		os.RemoveAll(staging)
		return err
	}
	os.RemoveAll(final)
	if err := os.Rename(staging, final); err != nil {
		os.RemoveAll(staging)
		return err
	}
	return nil
}

// extractTarGz walks a gzip-compressed tar stream and writes it under dest.
// No third-party archive library appears anywhere in the retrieved corpus,
// so this uses the standard library's archive/tar and compress/gzip.
func extractTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, filepath.Clean(hdr.Name))
		if !isWithinDir(dest, target) {
			return fmt.Errorf("downloader: archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

func isWithinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
