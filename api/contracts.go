/*
contracts.go - Contract generator and compliance guide endpoints

ENDPOINTS:
  POST   /api/contracts           Draft a contract, returned as JSON
  POST   /api/contracts/download  Draft and return a text/plain attachment
  POST   /api/contracts/export    Draft and hand the text to the Exporter
  GET    /api/guidance            Compliance guide rendered to HTML
  GET    /api/guidance/sections   Section headings of the guide

FLOW:
  factory.ParseContract -> contract.Stamp (date, number) -> contract.Draft
  Download and export use contract.Filename for the file name.

SEE ALSO:
  - contract/draft.go: Template and liquidated damages
  - guide.md: Guide source (embedded)
*/
package api

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/safe-harbor-engine/contract"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// =============================================================================
// CONTRACTS
// =============================================================================

type draftedContract struct {
	data     contract.Data
	text     string
	filename string
}

// draft parses and renders the contract in the request body. On failure it
// has already written the error response.
func (h *Handler) draft(w http.ResponseWriter, r *http.Request) (draftedContract, bool) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return draftedContract{}, false
	}

	data, err := h.Factory.ParseContract(body)
	if err != nil {
		writeDomainError(w, "Invalid contract", err)
		return draftedContract{}, false
	}

	now := h.now()
	data = contract.Stamp(data, now)
	text, err := contract.Draft(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to draft contract", err)
		return draftedContract{}, false
	}
	return draftedContract{
		data:     data,
		text:     text,
		filename: contract.Filename(now),
	}, true
}

// DraftContract returns the drafted contract as JSON.
func (h *Handler) DraftContract(w http.ResponseWriter, r *http.Request) {
	c, ok := h.draft(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ContractResponse{
		ContractNumber:    c.data.ContractNumber,
		ContractDate:      c.data.ContractDate,
		Filename:          c.filename,
		LiquidatedDamages: contract.LiquidatedDamages(c.data.TotalPrice),
		Text:              c.text,
	})
}

// DownloadContract returns the drafted contract as a plain text attachment.
func (h *Handler) DownloadContract(w http.ResponseWriter, r *http.Request) {
	c, ok := h.draft(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.filename))
	w.Header().Set("X-Contract-Number", c.data.ContractNumber)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(c.text))
}

// ExportContract drafts the contract and persists it through the Exporter.
func (h *Handler) ExportContract(w http.ResponseWriter, r *http.Request) {
	c, ok := h.draft(w, r)
	if !ok {
		return
	}

	requestID := uuid.New().String()
	if err := h.Exporter.Export(r.Context(), c.filename, c.text); err != nil {
		writeDomainError(w, "Failed to export contract", err)
		return
	}
	log.Printf("contract %s exported as %s (request %s)", c.data.ContractNumber, c.filename, requestID)

	writeJSON(w, http.StatusCreated, ExportResponse{
		Status:         "exported",
		RequestID:      requestID,
		ContractNumber: c.data.ContractNumber,
		Filename:       c.filename,
	})
}

// =============================================================================
// GUIDANCE
// =============================================================================

//go:embed guide.md
var guideMarkdown []byte

var (
	guideOnce sync.Once
	guideHTML []byte
	guideErr  error
)

func renderGuide() ([]byte, error) {
	guideOnce.Do(func() {
		md := goldmark.New(goldmark.WithExtensions(extension.Table))
		var buf bytes.Buffer
		if guideErr = md.Convert(guideMarkdown, &buf); guideErr == nil {
			guideHTML = buf.Bytes()
		}
	})
	return guideHTML, guideErr
}

// guideSections walks the parsed guide and returns its level 1-2 headings.
func guideSections() []GuideSectionDTO {
	doc := goldmark.DefaultParser().Parse(text.NewReader(guideMarkdown))

	var sections []GuideSectionDTO
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok || heading.Level > 2 {
			return ast.WalkContinue, nil
		}
		sections = append(sections, GuideSectionDTO{
			Title: headingText(heading, guideMarkdown),
			Level: heading.Level,
		})
		return ast.WalkSkipChildren, nil
	})
	return sections
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.WriteString(headingText(c, source))
	}
	return buf.String()
}

// GetGuidance returns the compliance guide as HTML.
func (h *Handler) GetGuidance(w http.ResponseWriter, r *http.Request) {
	html, err := renderGuide()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render guide", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

// ListGuideSections returns the guide's section headings.
func (h *Handler) ListGuideSections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, guideSections())
}
