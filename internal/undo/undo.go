// Package undo keeps bounded undo/redo stacks of document snapshots.
package undo

import "lazytodo/internal/model"

// DefaultLimit is the number of snapshots each stack retains.
const DefaultLimit = 10

type State struct {
	Doc    model.Document
	Cursor int
}

type Manager struct {
	limit int
	undo  []State
	redo  []State
}

// New returns a Manager bounded at limit entries per stack. A limit below 1
// uses DefaultLimit.
func New(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Push records a snapshot before a mutation and clears the redo stack.
// The oldest snapshot is dropped when the stack is full.
func (m *Manager) Push(doc model.Document, cursor int) {
	m.undo = pushBounded(m.undo, State{Doc: doc.Clone(), Cursor: cursor}, m.limit)
	m.redo = m.redo[:0]
}

// Undo stores current on the redo stack and returns the most recent snapshot.
func (m *Manager) Undo(current State) (State, bool) {
	if len(m.undo) == 0 {
		return State{}, false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = pushBounded(m.redo, State{Doc: current.Doc.Clone(), Cursor: current.Cursor}, m.limit)
	return prev, true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(current State) (State, bool) {
	if len(m.redo) == 0 {
		return State{}, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = pushBounded(m.undo, State{Doc: current.Doc.Clone(), Cursor: current.Cursor}, m.limit)
	return next, true
}

func (m *Manager) UndoLen() int { return len(m.undo) }
func (m *Manager) RedoLen() int { return len(m.redo) }

func pushBounded(stack []State, s State, limit int) []State {
	if len(stack) >= limit {
		stack = append(stack[:0], stack[len(stack)-limit+1:]...)
	}
	return append(stack, s)
}
