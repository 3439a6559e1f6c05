package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/whrealtors/realty-web/internal/catalog"
	"github.com/whrealtors/realty-web/internal/geo"
	"github.com/whrealtors/realty-web/internal/leadform"
)

//go:embed templates/*.html
var templateFS embed.FS

type navLink struct {
	Href  string
	Label string
}

var (
	landingNav = []navLink{{"#discover", "Discover"}, {"#gallery", "Gallery"}, {"#about", "About"}, {"#contact", "Contact"}}
	projectNav = []navLink{{"#about-project", "About"}, {"#gallery", "Gallery"}, {"#features", "Features"}, {"#contact", "Contact"}}
)

// Notice is the inline message shown above the contact form.
type Notice struct {
	Kind string // "success" or "error"
	Text string
}

type pageData struct {
	Title string
	Nav   []navLink
	Year  int

	Projects []catalog.Project
	Team     []catalog.Member

	Project     *catalog.Project
	ContactLink string
	Map         *geo.MapView
	MapsAPIKey  string
	Form        leadform.Fields
	Notice      *Notice
}

// renderer holds one parsed template set per page.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(featureBlurb string) (*renderer, error) {
	funcs := template.FuncMap{
		"advantageCard": catalog.AdvantageCard,
		"featureCard": func(e catalog.Entry) catalog.Card {
			return catalog.FeatureCard(e, featureBlurb)
		},
	}
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"landing", "project", "notfound"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("site: parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data pageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("site: unknown page %q", page)
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("site: execute %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
