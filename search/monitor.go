package search

import "github.com/poiesic/essayguide/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	AfterLexicalSearch(materialIds []uint64, essayIds []uint64)
	AfterSemanticSearch(ids []uint64)
	LexicalAndSemanticHit(id core.ID)
	LexicalHit(id core.ID)
	SemanticHit(id core.ID)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterLexicalSearch(_ []uint64, _ []uint64) {}
func (n *noopMonitor) AfterSemanticSearch(_ []uint64)        {}
func (n *noopMonitor) LexicalAndSemanticHit(_ core.ID)       {}
func (n *noopMonitor) LexicalHit(_ core.ID)                  {}
func (n *noopMonitor) SemanticHit(_ core.ID)                 {}
func (n *noopMonitor) Finish(_ *Result)                      {}
