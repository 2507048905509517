package layout

import "fmt"

// NoteKind classifies advisory notes attached to a computed model.
type NoteKind string

// Note kinds. Notes are recoverable conditions: they never interrupt the
// pipeline and are surfaced by callers as log lines or UI warnings.
const (
	// NoteCycle records a transition that was excluded from rank assignment
	// to break a cycle. The transition is still routed, tagged as feedback.
	NoteCycle NoteKind = "cycle"

	// NoteLaneDefault records a node whose lane could not be derived from
	// its role or neighbors and fell back to lane 0.
	NoteLaneDefault NoteKind = "lane_default"

	// NoteEmptyGraph records that the document had no flow nodes. The
	// resulting model is valid and empty; this is not an error.
	NoteEmptyGraph NoteKind = "empty_graph"
)

// Note is an advisory message attached to a model. Ref names the transition
// or node the note refers to, when applicable.
type Note struct {
	Kind    NoteKind `json:"kind" bson:"kind"`
	Ref     string   `json:"ref,omitempty" bson:"ref,omitempty"`
	Message string   `json:"message" bson:"message"`
}

// String formats the note for log output.
func (n Note) String() string {
	if n.Ref == "" {
		return fmt.Sprintf("%s: %s", n.Kind, n.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", n.Kind, n.Ref, n.Message)
}

// NotesOfKind returns the model's notes with the given kind, in the order
// they were recorded.
func (m *Model) NotesOfKind(kind NoteKind) []Note {
	var out []Note
	for _, n := range m.Notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
