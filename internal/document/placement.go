package document

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"admissions-service/common/apperror"
	"admissions-service/internal/config"
)

const UnknownDocumentID = "unknown"

// StagedDocument pairs a staged file with the required document it satisfies.
type StagedDocument struct {
	File               StagedFile
	RequiredDocumentID string
}

type PlacedDocument struct {
	OriginalName       string `json:"originalName"`
	FinalPath          string `json:"finalPath"`
	Extension          string `json:"extension"`
	RequiredDocumentID string `json:"requiredDocumentId"`
}

// Placement moves staged files into per applicant folders.
type Placement struct {
	root    string
	staging *Staging
}

func NewPlacement(cfg config.StorageConfig, staging *Staging) *Placement {
	return &Placement{
		root:    filepath.Clean(cfg.UploadDir),
		staging: staging,
	}
}

// Dir is the permanent folder of an applicant.
func (p *Placement) Dir(applicantID string) string {
	return filepath.Join(p.root, "applicant-"+applicantID)
}

// Place moves each staged file into the applicant folder, keeping its
// generated name. Files moved before a failure stay where they are; the
// remaining staged files are swept.
func (p *Placement) Place(ctx context.Context, applicantID string, docs []StagedDocument) ([]PlacedDocument, error) {
	applicantID = strings.TrimSpace(applicantID)
	if err := checkApplicantID(applicantID); err != nil {
		p.staging.Sweep(ctx, stagedFiles(docs))
		return nil, err
	}

	dir := p.Dir(applicantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.staging.Sweep(ctx, stagedFiles(docs))
		return nil, apperror.Placement("failed to create applicant directory", err)
	}

	placed := make([]PlacedDocument, 0, len(docs))
	for i, d := range docs {
		dst := filepath.Join(dir, d.File.Name)
		if err := os.Rename(d.File.Path, dst); err != nil {
			p.staging.Sweep(ctx, stagedFiles(docs[i:]))
			return nil, apperror.Placement("failed to move "+d.File.OriginalName, err)
		}

		id := d.RequiredDocumentID
		if id == "" {
			id = UnknownDocumentID
		}
		placed = append(placed, PlacedDocument{
			OriginalName:       d.File.OriginalName,
			FinalPath:          filepath.ToSlash(dst),
			Extension:          d.File.Extension,
			RequiredDocumentID: id,
		})
	}
	return placed, nil
}

// Owns reports whether path is a regular file directly inside the
// applicant folder.
func (p *Placement) Owns(applicantID, path string) bool {
	if checkApplicantID(applicantID) != nil || strings.TrimSpace(path) == "" {
		return false
	}
	dir, err := filepath.Abs(p.Dir(applicantID))
	if err != nil {
		return false
	}
	target, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil || filepath.Dir(target) != dir {
		return false
	}
	info, err := os.Lstat(target)
	return err == nil && info.Mode().IsRegular()
}

// Discard removes the applicant folder and everything in it.
func (p *Placement) Discard(applicantID string) error {
	if err := checkApplicantID(applicantID); err != nil {
		return err
	}
	if err := os.RemoveAll(p.Dir(applicantID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperror.Storage("failed to remove applicant directory", err)
	}
	return nil
}

// PairPositional zips files with ids by index. Files without an id get
// UnknownDocumentID.
func PairPositional(files []StagedFile, ids []string) []StagedDocument {
	docs := make([]StagedDocument, len(files))
	for i, f := range files {
		id := UnknownDocumentID
		if i < len(ids) && strings.TrimSpace(ids[i]) != "" {
			id = strings.TrimSpace(ids[i])
		}
		docs[i] = StagedDocument{File: f, RequiredDocumentID: id}
	}
	return docs
}

func checkApplicantID(id string) error {
	if id == "" {
		return apperror.Validation("", "applicant id is required")
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return apperror.Validation("", "invalid applicant id", id)
	}
	return nil
}

func stagedFiles(docs []StagedDocument) []StagedFile {
	files := make([]StagedFile, len(docs))
	for i, d := range docs {
		files[i] = d.File
	}
	return files
}
