package domain

// Document is a single ingested reference document. Re-uploading a document
// with the same ID supersedes the previous version entirely.
type Document struct {
	ID      string
	Source  string
	Content string
}

// Chunk is a contiguous span of a document's content, the unit of embedding
// and retrieval. Ordinals are dense from 0 within a parent.
type Chunk struct {
	ID       string
	ParentID string
	Text     string
	Ordinal  int
}

// TicketRecord is a past issue-tracker ticket used for grounding. It is
// ingested in bulk and never mutated by this subsystem.
type TicketRecord struct {
	ID          string
	Summary     string
	Description string
	Status      string
	IssueType   string
}

// Text renders the record the way it is embedded and stored as payload text.
func (t TicketRecord) Text() string {
	return "Summary: " + t.Summary + "\nDescription: " + t.Description
}

// IndexEntry is what a vector index persists: a stable id, the embedding
// vector and a denormalized payload rich enough that query results never
// require a second lookup.
type IndexEntry struct {
	ID      string
	Vector  []float64
	Payload map[string]any
}

// ScoredEntry is a query hit ordered by descending cosine similarity.
type ScoredEntry struct {
	ID      string
	Payload map[string]any
	Score   float64
}

// RetrievedTicket is a similar past ticket surfaced by retrieval.
type RetrievedTicket struct {
	ID        string
	Text      string
	Status    string
	IssueType string
	Score     float64
}

// Grounding is the retrieved context handed to a generation call. Either
// half may be empty independently when its backing index is unavailable.
type Grounding struct {
	SimilarTickets []RetrievedTicket
	DocExcerpts    []string
}

// Empty reports whether retrieval produced nothing usable.
func (g Grounding) Empty() bool {
	return len(g.SimilarTickets) == 0 && len(g.DocExcerpts) == 0
}

// Classification is the intake router's verdict for a raw request.
type Classification struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	TargetAgent string  `json:"target_agent"`
	Reasoning   string  `json:"reasoning"`
}

// Intake categories produced by the classifier.
const (
	TypeBug      = "Bug"
	TypeStory    = "Story"
	TypeQuestion = "Question"
	TypeAccess   = "Access"
	TypeOther    = "Other"
	TypeUnknown  = "Unknown"
)

// Routing targets. Manual is the escalate-to-a-human signal used whenever
// classification fails.
const (
	AgentDecomposition = "DecompositionAgent"
	AgentSupport       = "SupportAgent"
	AgentManual        = "Manual"
)

// TriageResult is the outcome of the full intake pipeline for one request.
type TriageResult struct {
	Classification Classification
	Grounding      Grounding
	Fields         map[string]any
}
