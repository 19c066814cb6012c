package ui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/reconcile"
)

// ErrAborted is returned when the user kills the prompt with ctrl+c. The
// session treats it like any interaction error and abandons what is left.
var ErrAborted = errors.New("ui: aborted")

// Prompter drives the interactive parts of a reconciliation run. Each
// prompt is a short-lived bubbletea program; the process stays a plain CLI
// between prompts.
type Prompter struct {
	Currency string
}

func (p *Prompter) ConfirmBatch(items []reconcile.Item) (bool, error) {
	body := styleHeader.Render(fmt.Sprintf("%d entries matched a preset:", len(items))) + "\n"
	for _, it := range items {
		label := it.Proposed()
		body += fmt.Sprintf("  %s  %-32s %12s  -> %s\n",
			it.Entry.Date.Format(time.DateOnly),
			truncate(it.Entry.Name, 32),
			FormatAmount(it.Entry.SignedCents(), p.Currency),
			label.CategoryName)
	}
	m, err := runProgram(newConfirm("transfer all of them?", body))
	if err != nil {
		return false, err
	}
	cm := m.(confirmModel)
	if cm.aborted {
		return false, ErrAborted
	}
	return cm.answer, nil
}

func (p *Prompter) Resolve(item reconcile.Item, taxonomy reconcile.Taxonomy) (reconcile.Decision, error) {
	title := fmt.Sprintf("%s  %s  %s",
		item.Entry.Date.Format(time.DateOnly),
		truncate(item.Entry.Name, 40),
		FormatAmount(item.Entry.SignedCents(), p.Currency))

	for {
		choice, err := p.pickAction(title, item)
		if err != nil {
			return reconcile.Decision{}, err
		}
		switch choice.kind {
		case actionSkip:
			return reconcile.Decision{Skip: true}, nil
		case actionPreset:
			label := choice.preset.Label
			return reconcile.Decision{Type: label.Type, CategoryName: label.CategoryName, Note: label.Note}, nil
		case actionManual:
			decision, ok, err := p.pickCategory(title, choice.typ, item, taxonomy)
			if err != nil {
				return reconcile.Decision{}, err
			}
			if ok {
				return decision, nil
			}
			// esc in the category picker goes back to the action list
		}
	}
}

type actionKind int

const (
	actionSkip actionKind = iota
	actionPreset
	actionManual
)

type action struct {
	kind   actionKind
	preset reconcile.Preset
	typ    string
}

func (p *Prompter) pickAction(title string, item reconcile.Item) (action, error) {
	var items []pickerItem
	actions := map[string]action{}
	for i, m := range item.Matches {
		id := fmt.Sprintf("preset-%d", i)
		items = append(items, pickerItem{
			ID:    id,
			Label: fmt.Sprintf("%s (%s)", m.Preset.Label.CategoryName, m.Preset.Label.Type),
			Desc:  "matched " + m.Preset.Source,
		})
		actions[id] = action{kind: actionPreset, preset: m.Preset}
	}
	items = append(items,
		pickerItem{ID: "expense", Label: "expense...", Desc: "pick an expense category"},
		pickerItem{ID: "income", Label: "income...", Desc: "pick an income category"},
		pickerItem{ID: "skip", Label: "skip", Desc: "leave this entry out"},
	)
	actions["expense"] = action{kind: actionManual, typ: ledger.TypeExpense}
	actions["income"] = action{kind: actionManual, typ: ledger.TypeIncome}
	actions["skip"] = action{kind: actionSkip}

	m, err := runProgram(newPicker(title, items))
	if err != nil {
		return action{}, err
	}
	pm := m.(pickerModel)
	if pm.aborted {
		return action{}, ErrAborted
	}
	if pm.cancelled || pm.selected == nil {
		return action{kind: actionSkip}, nil
	}
	return actions[pm.selected.ID], nil
}

func (p *Prompter) pickCategory(title, typ string, item reconcile.Item, taxonomy reconcile.Taxonomy) (reconcile.Decision, bool, error) {
	var items []pickerItem
	for _, c := range taxonomy.ByType(typ) {
		desc := typ
		if c.ParentID != "" {
			desc = "sub-category"
		}
		items = append(items, pickerItem{ID: c.ID, Label: c.Name, Desc: desc})
	}
	m, err := runProgram(newPicker(title+"  ("+typ+")", items))
	if err != nil {
		return reconcile.Decision{}, false, err
	}
	pm := m.(pickerModel)
	if pm.aborted {
		return reconcile.Decision{}, false, ErrAborted
	}
	if pm.cancelled || pm.selected == nil {
		return reconcile.Decision{}, false, nil
	}

	nm, err := runProgram(newNote("note", item.Entry.Name))
	if err != nil {
		return reconcile.Decision{}, false, err
	}
	note := nm.(noteModel)
	if note.aborted {
		return reconcile.Decision{}, false, ErrAborted
	}
	return reconcile.Decision{
		Type:         typ,
		CategoryName: pm.selected.Label,
		Note:         note.input.Value(),
	}, true, nil
}

// Option is one selectable choice for PickOne.
type Option struct {
	ID    string
	Label string
	Desc  string
}

// PickOne presents a filterable list and returns the chosen option's ID.
// ok is false when the user cancelled.
func PickOne(title string, opts []Option) (id string, ok bool, err error) {
	items := make([]pickerItem, 0, len(opts))
	for _, o := range opts {
		items = append(items, pickerItem{ID: o.ID, Label: o.Label, Desc: o.Desc})
	}
	m, err := runProgram(newPicker(title, items))
	if err != nil {
		return "", false, err
	}
	pm := m.(pickerModel)
	if pm.aborted {
		return "", false, ErrAborted
	}
	if pm.cancelled || pm.selected == nil {
		return "", false, nil
	}
	return pm.selected.ID, true, nil
}

// Confirm is a standalone yes/no prompt.
func Confirm(prompt string) (bool, error) {
	m, err := runProgram(newConfirm(prompt, ""))
	if err != nil {
		return false, err
	}
	cm := m.(confirmModel)
	if cm.aborted {
		return false, ErrAborted
	}
	return cm.answer, nil
}

// runProgram is swapped out in tests.
var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}
