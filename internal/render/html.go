package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/saferoute-service/internal/domain"
)

// DefaultOutput - файл карты по умолчанию
const DefaultOutput = "safest_route_map.html"

//go:embed map.html.tpl
var mapTemplate string

// RouteMap - данные для отрисовки маршрута
type RouteMap struct {
	Title     string
	Mode      domain.TimeMode
	Start     domain.Coordinate
	End       domain.Coordinate
	Path      []domain.Coordinate
	Cost      float64
	DistanceM float64
}

type pageData struct {
	Title      string
	Path       [][2]float64
	Start      [2]float64
	End        [2]float64
	StartLabel string
	EndLabel   string
	Summary    string
}

// HTMLRenderer рисует маршрут на странице Leaflet с тайлами OSM
type HTMLRenderer struct {
	tmpl   *template.Template
	minify *minify.M
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("map").Parse(mapTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse map template: %w", err)
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)

	return &HTMLRenderer{tmpl: tmpl, minify: m}, nil
}

// Render пишет минифицированную HTML-страницу в w
func (r *HTMLRenderer) Render(w io.Writer, rm RouteMap) error {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, newPageData(rm)); err != nil {
		return fmt.Errorf("execute map template: %w", err)
	}

	if err := r.minify.Minify("text/html", w, &buf); err != nil {
		return fmt.Errorf("minify map page: %w", err)
	}
	return nil
}

// RenderFile пишет страницу в файл path
func (r *HTMLRenderer) RenderFile(path string, rm RouteMap) error {
	if path == "" {
		path = DefaultOutput
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, rm); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	return nil
}

func newPageData(rm RouteMap) pageData {
	title := rm.Title
	if title == "" {
		title = "Safest route"
	}

	path := make([][2]float64, 0, len(rm.Path))
	for _, c := range rm.Path {
		path = append(path, [2]float64{c.Lat, c.Lon})
	}

	return pageData{
		Title:      title,
		Path:       path,
		Start:      [2]float64{rm.Start.Lat, rm.Start.Lon},
		End:        [2]float64{rm.End.Lat, rm.End.Lon},
		StartLabel: "Start " + rm.Start.String(),
		EndLabel:   "End " + rm.End.String(),
		Summary:    fmt.Sprintf("%s route: %.0f m, cost %.1f", rm.Mode, rm.DistanceM, rm.Cost),
	}
}
