package drawer

import (
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-lazypipe/internal/store"
	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
)

// SVGDrawer is a drawer that creates a DOT file with the pipeline graph, ready to be rendered as SVG.
type SVGDrawer struct {
	store       store.CustomStore[string, string]
	graph       graph.Graph[string, string]
	svgFileName string
}

// NewSVGDrawer creates a new SVG drawer.
func NewSVGDrawer(svgFileName string) *SVGDrawer {
	str := store.NewMemoryStore[string, string]()

	return &SVGDrawer{
		svgFileName: svgFileName,
		store:       str,
		graph:       graph.NewWithStore(graph.StringHash, graph.Store[string, string](str), graph.Directed()),
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *SVGDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children stages.
func (d *SVGDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *SVGDrawer) Draw() error {
	file, err := os.Create(d.svgFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.svgFileName)
	}
	defer file.Close()

	err = dot(d.graph, file, graphAttribute("rankdir", "LR"))
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.svgFileName)
	}

	return nil
}

// SetTotalTime sets the total time for the stage.
func (d *SVGDrawer) SetTotalTime(stageName string, startTime time.Time) error {
	err := d.store.UpdateVertex(stageName, graph.VertexAttribute("xlabel", time.Since(startTime).String()))
	if err != nil {
		return errors.Wrapf(err, "unable to set total time of %s", stageName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure adds measure to drawer. Edges are coloured from blue (fastest) to red (slowest).
func (d *SVGDrawer) AddMeasure(msr measure.Measure) error {
	var minValue, maxValue time.Duration

	found := false

	for _, stage := range msr.AllMetrics() {
		for _, info := range stage.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			if !found || info.Elapsed < minValue {
				minValue = info.Elapsed
			}

			if !found || info.Elapsed > maxValue {
				maxValue = info.Elapsed
			}

			found = true
		}
	}

	heat := func(elapsed time.Duration) (string, error) {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(elapsed-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		color, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return "", errors.Wrap(err, "unable to get colour")
		}

		return color.ToHEX().String(), nil
	}

	err := d.updateMetrics(msr, heat)
	if err != nil {
		return errors.Wrap(err, "unable to update metrics")
	}

	return nil
}

func (d *SVGDrawer) updateMetrics(msr measure.Measure, heat func(time.Duration) (string, error)) error {
	for name, stage := range msr.AllMetrics() {
		_, properties, err := d.graph.VertexWithProperties(name)
		if errors.Is(err, graph.ErrVertexNotFound) {
			continue
		}

		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		xlabel := properties.Attributes["xlabel"]
		if stageAvg := stage.AVGDuration(); stageAvg != 0 {
			xlabel = stageAvg.String()
		}

		if stage.GetTotalDuration() > 0 {
			xlabel += ", end: " + stage.GetTotalDuration().String()
		}

		options := []func(*graph.VertexProperties){graph.VertexWeight(int(stage.Total()))}
		if xlabel != "" {
			options = append(options, graph.VertexAttribute("xlabel", xlabel))
		}

		err = d.store.UpdateVertex(name, options...)
		if err != nil {
			return errors.Wrap(err, "unable to update vertex")
		}

		for inputStage, info := range stage.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			color, err := heat(info.Elapsed)
			if err != nil {
				return err
			}

			err = d.graph.UpdateEdge(inputStage, name,
				graph.EdgeAttribute("label", info.Elapsed.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", color),
			)
			if err != nil {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return errors.Wrap(err, "unable to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// graphAttribute sets a top level attribute of the rendered graph.
func graphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		// the stored attributes are shared with the graph, xlabel must survive a second draw
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))

		for key, value := range sourceProperties.Attributes {
			if key == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, value)

				continue
			}

			sourceAttributes[key] = value
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencies {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*SVGDrawer)(nil)
