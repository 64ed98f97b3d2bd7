package editor

import (
	"sync"

	"sow-studio-be/pkg/lexical"
)

// Editor is the contract the merge engine works against. The frontend editor
// fulfils it over the wire; MemoryEditor fulfils it in-process.
type Editor interface {
	GetContent() *lexical.LexicalRoot
	SetContent(root *lexical.LexicalRoot)
}

// MergeEngine reconciles a synthesized document with the open editor
// content. Both the empty and populated destinations currently resolve to a
// full replace; section level merging is a known future direction.
type MergeEngine struct{}

func NewMergeEngine() *MergeEngine {
	return &MergeEngine{}
}

// MergeOutcome describes what the engine did with the destination.
type MergeOutcome struct {
	Replaced       bool
	DestinationWas string // "empty" or "populated"
}

// Merge installs next into the editor. A nil next leaves the editor alone.
func (e *MergeEngine) Merge(ed Editor, next *lexical.LexicalRoot) MergeOutcome {
	if next == nil {
		return MergeOutcome{}
	}

	destination := "populated"
	if lexical.IsEmptyDocument(ed.GetContent()) {
		destination = "empty"
	}

	ed.SetContent(next)
	return MergeOutcome{Replaced: true, DestinationWas: destination}
}

// MemoryEditor is a threadsafe in-process Editor.
type MemoryEditor struct {
	mu   sync.RWMutex
	root *lexical.LexicalRoot
}

func NewMemoryEditor() *MemoryEditor {
	return &MemoryEditor{}
}

func (m *MemoryEditor) GetContent() *lexical.LexicalRoot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

func (m *MemoryEditor) SetContent(root *lexical.LexicalRoot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
}
