package adminui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"apothek/internal/models"
	"apothek/internal/slug"
)

// state is the console's top-level lifecycle state.
type state int

const (
	stateLoading state = iota
	stateFailed
	stateReady
)

// dialogMode is the modal sub-state layered over the ready view.
type dialogMode int

const (
	dialogNone dialogMode = iota
	dialogAdd
	dialogEdit
	dialogConfirmDelete
)

// Form field indices for focus cycling.
const (
	fieldName = iota
	fieldSlug
	fieldDescription
	fieldParent
	fieldCount
)

// requestTimeout bounds every API call issued by the console.
const requestTimeout = 15 * time.Second

// row is one visible line of the flattened category tree.
type row struct {
	cat     models.Category
	isChild bool
}

// treeMsg carries the result of a tree fetch.
type treeMsg struct {
	categories []models.Category
	err        error
}

// submitMsg carries the result of a create or update call.
type submitMsg struct {
	err error
}

// deleteMsg carries the result of a delete call.
type deleteMsg struct {
	err error
}

// Model is the bubbletea model for the category console.
type Model struct {
	client *Client
	styles Styles

	state      state
	loadErr    error
	categories []models.Category

	// Tree navigation.
	expanded map[uuid.UUID]bool
	rows     []row
	cursor   int

	// Dialog state.
	dialog      dialogMode
	inputs      [3]textinput.Model // name, slug, description
	focus       int
	parents     []models.Category // selectable parents (mains)
	parentIndex int               // 0 = none, i>0 = parents[i-1]
	editing     *models.Category
	deleting    *models.Category

	// inFlight suppresses re-entrant submits while a call is pending.
	inFlight bool

	status  string
	lastErr string

	width  int
	height int
}

// NewModel creates the console model. The client must already be
// authenticated.
func NewModel(client *Client) Model {
	name := textinput.New()
	name.Placeholder = "Nom de la catégorie"
	name.CharLimit = 200
	name.Width = 40

	slugInput := textinput.New()
	slugInput.Placeholder = "généré automatiquement"
	slugInput.CharLimit = 200
	slugInput.Width = 40

	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 500
	desc.Width = 40

	return Model{
		client:   client,
		styles:   DefaultStyles(),
		state:    stateLoading,
		expanded: make(map[uuid.UUID]bool),
		inputs:   [3]textinput.Model{name, slugInput, desc},
	}
}

// Init starts the initial tree fetch.
func (m Model) Init() tea.Cmd {
	return m.loadTree()
}

// loadTree returns a command fetching the category tree.
func (m Model) loadTree() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		cats, err := client.FetchTree(ctx)
		return treeMsg{categories: cats, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case treeMsg:
		if msg.err != nil {
			m.state = stateFailed
			m.loadErr = msg.err
			return m, nil
		}
		m.state = stateReady
		m.loadErr = nil
		m.categories = msg.categories
		// Every main category starts expanded after a fetch.
		m.expanded = make(map[uuid.UUID]bool, len(m.categories))
		for _, c := range m.categories {
			m.expanded[c.ID] = true
		}
		m.rebuildRows()
		return m, nil

	case submitMsg:
		m.inFlight = false
		if msg.err != nil {
			// Keep the dialog open so the input isn't lost.
			m.lastErr = msg.err.Error()
			return m, nil
		}
		verb := "créée"
		if m.dialog == dialogEdit {
			verb = "mise à jour"
		}
		m.status = "Catégorie " + verb + "."
		m.closeDialog()
		m.state = stateLoading
		return m, m.loadTree()

	case deleteMsg:
		m.inFlight = false
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.status = "Catégorie supprimée."
		m.closeDialog()
		m.state = stateLoading
		return m, m.loadTree()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey dispatches keystrokes by state and dialog mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateLoading:
		return m, nil

	case stateFailed:
		switch msg.String() {
		case "r":
			m.state = stateLoading
			return m, m.loadTree()
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.dialog {
	case dialogNone:
		return m.handleTreeKey(msg)
	case dialogAdd, dialogEdit:
		return m.handleFormKey(msg)
	case dialogConfirmDelete:
		return m.handleConfirmKey(msg)
	}
	return m, nil
}

// handleTreeKey handles navigation over the flattened tree.
func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "enter", " ":
		if r, ok := m.selectedRow(); ok && !r.isChild {
			m.expanded[r.cat.ID] = !m.expanded[r.cat.ID]
			m.rebuildRows()
		}

	case "a":
		m.openAddDialog()
		return m, m.inputs[fieldName].Focus()

	case "e":
		if r, ok := m.selectedRow(); ok {
			m.openEditDialog(r.cat)
			return m, m.inputs[fieldName].Focus()
		}

	case "d":
		if r, ok := m.selectedRow(); ok {
			cat := r.cat
			m.dialog = dialogConfirmDelete
			m.deleting = &cat
			m.lastErr = ""
		}

	case "r":
		m.state = stateLoading
		m.status = ""
		return m, m.loadTree()
	}

	return m, nil
}

// handleFormKey handles the add/edit dialog.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.inFlight {
			m.closeDialog()
		}
		return m, nil

	case "enter":
		if m.inFlight {
			return m, nil
		}
		return m.submitForm()

	case "tab", "shift+tab", "up", "down":
		if msg.String() == "tab" || msg.String() == "down" {
			m.focus = (m.focus + 1) % fieldCount
		} else {
			m.focus = (m.focus + fieldCount - 1) % fieldCount
		}
		for i := range m.inputs {
			if i == m.focus {
				m.inputs[i].Focus()
			} else {
				m.inputs[i].Blur()
			}
		}
		return m, nil

	case "left", "right":
		if m.focus == fieldParent {
			span := len(m.parents) + 1
			if msg.String() == "right" {
				m.parentIndex = (m.parentIndex + 1) % span
			} else {
				m.parentIndex = (m.parentIndex + span - 1) % span
			}
			return m, nil
		}
	}

	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

		// In add mode the slug tracks the name on every keystroke.
		// Edits never regenerate an existing category's slug.
		if m.dialog == dialogAdd && m.focus == fieldName {
			m.inputs[fieldSlug].SetValue(slug.Generate(m.inputs[fieldName].Value()))
		}
		return m, cmd
	}

	return m, nil
}

// handleConfirmKey handles the delete confirmation dialog.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.inFlight || m.deleting == nil {
			return m, nil
		}
		m.inFlight = true
		m.lastErr = ""
		client, id := m.client, m.deleting.ID.String()
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return deleteMsg{err: client.DeleteCategory(ctx, id)}
		}

	case "n", "esc":
		if !m.inFlight {
			m.closeDialog()
		}
	}
	return m, nil
}

// submitForm validates the dialog and issues the create or update call.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		m.lastErr = "Le nom est requis."
		return m, nil
	}

	in := CategoryInput{
		Name:        name,
		Slug:        strings.TrimSpace(m.inputs[fieldSlug].Value()),
		Description: strings.TrimSpace(m.inputs[fieldDescription].Value()),
		ParentID:    "none",
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(name)
	}
	if m.parentIndex > 0 {
		in.ParentID = m.parents[m.parentIndex-1].ID.String()
	}

	m.inFlight = true
	m.lastErr = ""

	client := m.client
	if m.dialog == dialogEdit && m.editing != nil {
		id := m.editing.ID.String()
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			_, err := client.UpdateCategory(ctx, id, in)
			return submitMsg{err: err}
		}
	}
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := client.CreateCategory(ctx, in)
		return submitMsg{err: err}
	}
}

// openAddDialog resets the form for a new category.
func (m *Model) openAddDialog() {
	m.dialog = dialogAdd
	m.editing = nil
	m.resetForm()

	// Preselect the highlighted main category as parent.
	if r, ok := m.selectedRow(); ok && !r.isChild {
		for i, p := range m.parents {
			if p.ID == r.cat.ID {
				m.parentIndex = i + 1
			}
		}
	}
}

// openEditDialog loads the selected category into the form.
func (m *Model) openEditDialog(cat models.Category) {
	m.dialog = dialogEdit
	c := cat
	m.editing = &c
	m.resetForm()

	m.inputs[fieldName].SetValue(cat.Name)
	m.inputs[fieldSlug].SetValue(cat.Slug)
	m.inputs[fieldDescription].SetValue(cat.Description)

	if cat.ParentID != nil {
		for i, p := range m.parents {
			if p.ID == *cat.ParentID {
				m.parentIndex = i + 1
			}
		}
	}
}

// resetForm clears inputs and rebuilds the parent options from the
// current main categories. A category can't be its own parent, and one
// that still has subcategories stays a main category.
func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldName
	m.parentIndex = 0
	m.lastErr = ""

	m.parents = m.parents[:0]
	if m.editing != nil && len(m.editing.Children) > 0 {
		return
	}
	for _, c := range m.categories {
		if m.editing != nil && c.ID == m.editing.ID {
			continue
		}
		m.parents = append(m.parents, c)
	}
}

// closeDialog returns to the tree view.
func (m *Model) closeDialog() {
	m.dialog = dialogNone
	m.editing = nil
	m.deleting = nil
	m.lastErr = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// rebuildRows flattens the tree into visible rows, honoring the
// expanded set, and clamps the cursor.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	for _, c := range m.categories {
		m.rows = append(m.rows, row{cat: c})
		if m.expanded[c.ID] {
			for _, child := range c.Children {
				m.rows = append(m.rows, row{cat: child, isChild: true})
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectedRow returns the row under the cursor.
func (m *Model) selectedRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}
