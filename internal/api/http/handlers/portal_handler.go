package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/service"
	apperrors "github.com/spec-kit/ticket-retriage/pkg/util"
)

//go:embed templates/portal.html
var templateFS embed.FS

var portalTemplate = template.Must(template.ParseFS(templateFS, "templates/portal.html"))

const (
	portalTitle        = "AI Maintenance Ticket Assistant Demo"
	exampleSnippetRune = 90
	requestTimeLayout  = "Monday, January 02, 2006 at 03:04 PM (MST)"
)

// PortalHandler renders the demo portal.
type PortalHandler struct {
	service *service.RetriageService
	now     func() time.Time
}

// NewPortalHandler constructs handler.
func NewPortalHandler(retriageService *service.RetriageService) *PortalHandler {
	return &PortalHandler{service: retriageService, now: time.Now}
}

type portalExample struct {
	ID    int
	Label string
}

type portalView struct {
	Title           string
	RequestTime     string
	Priorities      []string
	Categories      []string
	DefaultPriority string
	MaxWords        int
	ModelEnabled    bool
	Examples        []portalExample
}

// Index GET /.
func (h *PortalHandler) Index(c *fiber.Ctx) error {
	catalog := h.service.Catalog()
	labels := catalog.Labels()
	examples := catalog.Examples()

	view := portalView{
		Title:           portalTitle,
		RequestTime:     h.now().Format(requestTimeLayout),
		Priorities:      labels.Priorities,
		Categories:      labels.Categories,
		DefaultPriority: labels.DefaultPriority(),
		MaxWords:        domain.MaxCommentWords,
		ModelEnabled:    h.service.ModelEnabled(),
		Examples:        make([]portalExample, 0, len(examples)),
	}
	for _, e := range examples {
		view.Examples = append(view.Examples, portalExample{ID: e.ID, Label: ExampleLabel(e)})
	}

	var buf bytes.Buffer
	if err := portalTemplate.Execute(&buf, view); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// ExampleLabel renders the picker entry for a demo example.
func ExampleLabel(e domain.DemoExample) string {
	snippet := []rune(e.Comment)
	comment := e.Comment
	if len(snippet) > exampleSnippetRune {
		comment = string(snippet[:exampleSnippetRune]) + "…"
	}
	return fmt.Sprintf("#%d | %s | %s | %s", e.ID, e.ResidentPriority, e.ResidentCategory, comment)
}
