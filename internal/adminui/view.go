package adminui

import (
	"fmt"
	"strings"
)

// View renders the console.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Apothek — Catégories"))
	b.WriteString("\n")

	switch m.state {
	case stateLoading:
		b.WriteString("Chargement des catégories…\n")
		return b.String()

	case stateFailed:
		b.WriteString(m.styles.Error.Render("Échec du chargement : "+m.loadErr.Error()) + "\n\n")
		b.WriteString(m.styles.Help.Render("r réessayer · q quitter") + "\n")
		return b.String()
	}

	switch m.dialog {
	case dialogAdd, dialogEdit:
		b.WriteString(m.formView())
	case dialogConfirmDelete:
		b.WriteString(m.confirmView())
	default:
		b.WriteString(m.treeView())
	}

	if m.status != "" && m.dialog == dialogNone {
		b.WriteString("\n" + m.styles.Status.Render(m.status) + "\n")
	}

	return b.String()
}

// treeView renders the flattened two-level tree.
func (m Model) treeView() string {
	var b strings.Builder

	if len(m.rows) == 0 {
		b.WriteString("Aucune catégorie. Appuyez sur « a » pour en créer une.\n")
	}

	for i, r := range m.rows {
		line := m.rowView(r)
		if i == m.cursor {
			line = m.styles.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.styles.Help.Render(
		"↑/↓ naviguer · entrée replier/déplier · a ajouter · e modifier · d supprimer · r actualiser · q quitter") + "\n")
	return b.String()
}

// rowView renders one tree row: main rows show the subcategory count,
// child rows show the product count.
func (m Model) rowView(r row) string {
	slugPart := m.styles.Slug.Render(" (" + r.cat.Slug + ")")

	if r.isChild {
		products := fmt.Sprintf(" — %d produit(s)", r.cat.ProductCount)
		return m.styles.Child.Render("• "+r.cat.Name) + slugPart + m.styles.Badge.Render(products)
	}

	marker := "▸"
	if m.expanded[r.cat.ID] {
		marker = "▾"
	}
	badge := fmt.Sprintf(" [%d sous-catégorie(s)]", len(r.cat.Children))
	return marker + " " + m.styles.Main.Render(r.cat.Name) + slugPart + m.styles.Badge.Render(badge)
}

// formView renders the add/edit dialog.
func (m Model) formView() string {
	title := "Nouvelle catégorie"
	if m.dialog == dialogEdit {
		title = "Modifier la catégorie"
	}

	labels := [3]string{"Nom", "Slug", "Description"}
	var b strings.Builder
	b.WriteString(m.styles.Main.Render(title) + "\n\n")

	for i, in := range m.inputs {
		label := labels[i]
		if m.focus == i {
			label = m.styles.Focused.Render(label)
		} else {
			label = m.styles.Label.Render(label)
		}
		b.WriteString(label + "\n" + in.View() + "\n")
	}

	parentLabel := "Catégorie parente"
	if m.focus == fieldParent {
		parentLabel = m.styles.Focused.Render(parentLabel)
	} else {
		parentLabel = m.styles.Label.Render(parentLabel)
	}
	b.WriteString(parentLabel + "\n" + "◂ " + m.parentName() + " ▸\n")

	if m.inFlight {
		b.WriteString("\n" + m.styles.Help.Render("Envoi en cours…") + "\n")
	}
	if m.lastErr != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.lastErr) + "\n")
	}

	b.WriteString("\n" + m.styles.Help.Render("tab champ suivant · ←/→ parent · entrée enregistrer · échap annuler"))
	return m.styles.Dialog.Render(b.String()) + "\n"
}

// parentName returns the label of the currently selected parent option.
func (m Model) parentName() string {
	if m.parentIndex == 0 || m.parentIndex > len(m.parents) {
		return "Aucune (catégorie principale)"
	}
	return m.parents[m.parentIndex-1].Name
}

// confirmView renders the delete confirmation dialog.
func (m Model) confirmView() string {
	var b strings.Builder
	b.WriteString(m.styles.Error.Render("Supprimer la catégorie ?") + "\n\n")
	if m.deleting != nil {
		b.WriteString(m.styles.Main.Render(m.deleting.Name) + "\n")
		if n := len(m.deleting.Children); n > 0 {
			b.WriteString(m.styles.Error.Render(fmt.Sprintf("Les %d sous-catégorie(s) seront supprimées aussi.", n)) + "\n")
		}
	}
	if m.inFlight {
		b.WriteString("\n" + m.styles.Help.Render("Suppression en cours…") + "\n")
	}
	if m.lastErr != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.lastErr) + "\n")
	}
	b.WriteString("\n" + m.styles.Help.Render("y confirmer · n annuler"))
	return m.styles.Dialog.Render(b.String()) + "\n"
}
