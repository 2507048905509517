// Package export serializes computed swimlane layouts into downstream
// formats.
//
// Every exporter is a pure function of a flow document and its layout
// model; the exporters apply no layout logic of their own beyond the
// optional global scale already baked into the model.
//
//   - [ToBPMN] writes BPMN 2.0 XML with full diagram interchange (shape
//     bounds and edge waypoints), importable into BPMN modelers.
//   - [RenderSVG] draws the diagram directly: lane bands, rounded
//     activity boxes, gateway diamonds, orthogonal edge polylines.
//   - [ToMermaid] emits a Mermaid flowchart for embedding in Markdown.
//   - [ToDOT] emits a Graphviz overview with one cluster per lane;
//     [RenderDOTSVG] and [RenderDOTPNG] rasterize it in-process.
//   - [ToJSON] dumps the raw layout model for programmatic consumers.
package export
