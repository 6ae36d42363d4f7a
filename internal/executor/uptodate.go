package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/5l1v3r1/sw/internal/cmdgraph"
	"github.com/5l1v3r1/sw/internal/servicedb"
)

// ServiceDB is the slice of servicedb.DB the executor needs: looking up and
// recording a command's normalized content hash, and the cached per-input
// content hash used to avoid re-hashing unchanged files.
type ServiceDB interface {
	CommandHash(commandHash []byte) (int64, bool)
	RecordCommandHash(commandHash []byte, mtime int64) error
	Input(path string) (servicedb.InputRow, bool)
	RecordInput(path string, size, mtime int64, contentHash []byte) error
}

// outdatedReason names which up-to-date predicate failed, for
// explain_outdated diagnostics.
type outdatedReason string

const (
	reasonMissingOutput outdatedReason = "missing_output"
	reasonHashMismatch  outdatedReason = "command_hash_mismatch"
)

// checkUpToDate reports whether cmd is up-to-date: every output exists and
// the normalized (argv ⊕ env ⊕ sorted input content hashes) hash matches
// a previously-recorded value.
func checkUpToDate(db ServiceDB, cmd *cmdgraph.CommandNode) (upToDate bool, reason outdatedReason, hash []byte, err error) {
	for _, f := range cmd.Outputs {
		if _, statErr := os.Stat(f.Path); statErr != nil {
			h, hashErr := commandHash(db, cmd)
			if hashErr != nil {
				return false, reasonMissingOutput, nil, hashErr
			}
			return false, reasonMissingOutput, h, nil
		}
	}

	h, err := commandHash(db, cmd)
	if err != nil {
		return false, "", nil, err
	}
	if _, ok := db.CommandHash(h); !ok {
		return false, reasonHashMismatch, h, nil
	}
	return true, "", h, nil
}

// commandHash computes sha256(argv ⊕ sorted env ⊕ sorted(input path, input
// content hash)), reusing a cached per-input content hash when the file's
// size and mtime haven't changed since it was last recorded.
func commandHash(db ServiceDB, cmd *cmdgraph.CommandNode) ([]byte, error) {
	h := sha256.New()
	for _, a := range cmd.Argv {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}

	envKeys := make([]string, 0, len(cmd.Env))
	for k := range cmd.Env {
		envKeys = append(envKeys, k)
	}
	sort.Strings(envKeys)
	for _, k := range envKeys {
		h.Write([]byte(k))
		h.Write([]byte("="))
		h.Write([]byte(cmd.Env[k]))
		h.Write([]byte{0})
	}

	inputs := make([]string, len(cmd.Inputs))
	for i, f := range cmd.Inputs {
		inputs[i] = f.Path
	}
	sort.Strings(inputs)
	for _, path := range inputs {
		contentHash, err := inputContentHash(db, path)
		if err != nil {
			return nil, err
		}
		h.Write([]byte(path))
		h.Write([]byte{0})
		h.Write(contentHash)
	}

	return h.Sum(nil), nil
}

// inputContentHash returns path's content hash, reusing the servicedb-cached
// value when size and mtime are unchanged, else re-hashing and recording.
func inputContentHash(db ServiceDB, path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("executor: stat input %q: %w", path, err)
	}

	size, mtime := info.Size(), info.ModTime().Unix()
	if row, ok := db.Input(path); ok && row.Size == size && row.Mtime == mtime {
		return hex.DecodeString(row.ContentHash)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("executor: reading input %q: %w", path, err)
	}
	sum := sha256.Sum256(data)
	if err := db.RecordInput(path, size, mtime, sum[:]); err != nil {
		return nil, err
	}
	return sum[:], nil
}

// formatArgv renders argv the way diagnostic output and logs show it.
func formatArgv(argv []string) string {
	return strings.Join(argv, " ")
}
