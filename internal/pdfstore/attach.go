package pdfstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ReadEmbeddedFile returns the bytes of the named embedded file, with a
// presence flag. A document without the attachment is not an error.
func (s *Store) ReadEmbeddedFile(ctx context.Context, path, name string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("read attachment %s: %w", name, err)
	}
	defer f.Close()

	// A document with no embedded-files tree lists as nil, nil.
	attachments, err := api.Attachments(f, s.conf)
	if err != nil {
		return nil, false, fmt.Errorf("list attachments of %s: %w", filepath.Base(path), err)
	}
	if !hasAttachment(attachments, name) {
		return nil, false, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("read attachment %s: %w", name, err)
	}
	raw, err := api.ExtractAttachmentsRaw(f, "", []string{name}, s.conf)
	if err != nil {
		return nil, false, fmt.Errorf("extract attachment %s from %s: %w", name, filepath.Base(path), err)
	}
	for _, a := range raw {
		if a.ID != name && a.FileName != name {
			continue
		}
		data, err := io.ReadAll(a)
		if err != nil {
			return nil, false, fmt.Errorf("extract attachment %s: read payload: %w", name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// AttachBytes embeds data as a named attachment, modifying path in place.
func (s *Store) AttachBytes(ctx context.Context, path, name string, data []byte, desc string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	workDir, err := os.MkdirTemp("", "duplex-attach-*")
	if err != nil {
		return fmt.Errorf("attach %s: temp dir: %w", name, err)
	}
	defer os.RemoveAll(workDir)
	staged := filepath.Join(workDir, name)
	if err := os.WriteFile(staged, data, 0o644); err != nil {
		return fmt.Errorf("attach %s: stage payload: %w", name, err)
	}
	return s.attach(path, staged, name)
}

// AttachFile embeds the file at srcPath under its base name, in place.
func (s *Store) AttachFile(ctx context.Context, path, srcPath, desc string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.attach(path, srcPath, filepath.Base(srcPath))
}

func (s *Store) attach(path, srcPath, name string) error {
	if err := api.AddAttachmentsFile(path, "", []string{srcPath}, false, s.conf); err != nil {
		return fmt.Errorf("attach %s to %s: %w", name, filepath.Base(path), err)
	}
	return nil
}

// AddOpenAttachmentRegion places a clickable link region in the lower left
// corner of the first page. The region carries a relative URI naming the
// attached original, which resolves to the backup sibling while it exists;
// the attachment itself keeps the bytes available either way.
func (s *Store) AddOpenAttachmentRegion(ctx context.Context, path, attachmentName, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	region := types.NewRectangle(10, 10, 150, 30)
	ann := model.NewLinkAnnotation(
		*region,
		0,
		label,
		"",
		"",
		model.AnnPrint,
		&color.SimpleColor{B: 1},
		nil,
		attachmentName,
		nil,
		true,
		1,
		model.BSSolid,
	)
	if err := api.AddAnnotationsFile(path, "", []string{"1"}, ann, s.conf, false); err != nil {
		return fmt.Errorf("add open region for %s on %s: %w", attachmentName, filepath.Base(path), err)
	}
	return nil
}

// hasAttachment matches a wanted name against either the listing id or the
// embedded file name; pdfcpu keeps both and they may differ.
func hasAttachment(attachments []model.Attachment, want string) bool {
	for _, a := range attachments {
		if a.ID == want || a.FileName == want {
			return true
		}
	}
	return false
}
