package run

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"enefviz/domain/core"
)

// Fingerprint pins everything that determines a report's numbers. Two runs
// with equal fingerprints draw the same bars.
type Fingerprint struct {
	InputHash      core.Hash `json:"input_hash"`
	Sentinel       float64   `json:"sentinel"`
	GroupColumn    string    `json:"group_column"`
	ResponseColumn string    `json:"response_column"`
	CodeVersion    string    `json:"code_version"`
	Fingerprint    core.Hash `json:"fingerprint"`
}

// NewFingerprint derives the fingerprint of one report configuration
func NewFingerprint(inputHash core.Hash, sentinel float64, groupColumn, responseColumn, codeVersion string) Fingerprint {
	return Fingerprint{
		InputHash:      inputHash,
		Sentinel:       sentinel,
		GroupColumn:    groupColumn,
		ResponseColumn: responseColumn,
		CodeVersion:    codeVersion,
		Fingerprint:    computeFingerprint(inputHash, sentinel, groupColumn, responseColumn, codeVersion),
	}
}

func computeFingerprint(inputHash core.Hash, sentinel float64, groupColumn, responseColumn, codeVersion string) core.Hash {
	data := fmt.Sprintf("input:%s|sentinel:%s|group:%s|response:%s|code:%s",
		inputHash, strconv.FormatFloat(sentinel, 'f', -1, 64), groupColumn, responseColumn, codeVersion)
	sum := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", sum))
}
