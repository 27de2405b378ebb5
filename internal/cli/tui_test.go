package cli

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

func pickerProducts(n int) []catalog.Product {
	products := make([]catalog.Product, n)
	for i := range products {
		products[i] = catalog.Product{
			UPC:  upc.UPC(fmt.Sprintf("%011d", i+1)),
			Name: fmt.Sprintf("Product %d", i+1),
		}
	}
	return products
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func updateModel(t *testing.T, m ProductListModel, msg tea.Msg) ProductListModel {
	t.Helper()
	updated, _ := m.Update(msg)
	pm, ok := updated.(ProductListModel)
	if !ok {
		t.Fatalf("Update returned %T, want ProductListModel", updated)
	}
	return pm
}

func TestProductPickerNavigation(t *testing.T) {
	m := NewProductListModel(pickerProducts(3))

	m = updateModel(t, m, keyMsg("down"))
	m = updateModel(t, m, keyMsg("j"))
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}

	// Bottom of the list, cursor stays put
	m = updateModel(t, m, keyMsg("down"))
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2 at the bottom", m.Cursor)
	}

	m = updateModel(t, m, keyMsg("k"))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
}

func TestProductPickerToggle(t *testing.T) {
	m := NewProductListModel(pickerProducts(3))

	m = updateModel(t, m, keyMsg(" "))
	if !m.Checked[0] {
		t.Error("space should check the product under the cursor")
	}

	m = updateModel(t, m, keyMsg(" "))
	if m.Checked[0] {
		t.Error("space should uncheck a checked product")
	}
}

func TestProductPickerSelectAllNone(t *testing.T) {
	m := NewProductListModel(pickerProducts(3))

	m = updateModel(t, m, keyMsg("a"))
	if len(m.Checked) != 3 {
		t.Errorf("len(Checked) = %d after 'a', want 3", len(m.Checked))
	}

	m = updateModel(t, m, keyMsg("n"))
	if len(m.Checked) != 0 {
		t.Errorf("len(Checked) = %d after 'n', want 0", len(m.Checked))
	}
}

func TestProductPickerConfirm(t *testing.T) {
	m := NewProductListModel(pickerProducts(3))

	// Enter with nothing checked is ignored
	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(ProductListModel)
	if m.Confirmed || cmd != nil {
		t.Fatal("enter with nothing checked should be a no-op")
	}

	m = updateModel(t, m, keyMsg(" "))
	updated, cmd = m.Update(keyMsg("enter"))
	m = updated.(ProductListModel)
	if !m.Confirmed {
		t.Error("enter with a selection should confirm")
	}
	if cmd == nil {
		t.Error("confirm should quit the program")
	}
}

func TestProductPickerQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		m := NewProductListModel(pickerProducts(2))
		updated, cmd := m.Update(keyMsg(key))
		m = updated.(ProductListModel)

		if m.Confirmed {
			t.Errorf("%q should not confirm", key)
		}
		if cmd == nil {
			t.Errorf("%q should quit the program", key)
		}
	}
}

func TestProductPickerPicks(t *testing.T) {
	m := NewProductListModel(pickerProducts(4))

	m = updateModel(t, m, keyMsg("down"))
	m = updateModel(t, m, keyMsg("down"))
	m = updateModel(t, m, keyMsg(" ")) // row 2
	m = updateModel(t, m, keyMsg("up"))
	m = updateModel(t, m, keyMsg("up"))
	m = updateModel(t, m, keyMsg(" ")) // row 0

	if got, want := m.Picks(), []int{0, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Picks() = %v, want %v", got, want)
	}
}

func TestProductPickerScrolling(t *testing.T) {
	m := NewProductListModel(pickerProducts(5))
	m.Height = 2

	for i := 0; i < 4; i++ {
		m = updateModel(t, m, keyMsg("down"))
	}
	if m.Cursor != 4 {
		t.Fatalf("Cursor = %d, want 4", m.Cursor)
	}
	if m.Offset != 3 {
		t.Errorf("Offset = %d, want 3 (cursor kept in view)", m.Offset)
	}

	for i := 0; i < 4; i++ {
		m = updateModel(t, m, keyMsg("up"))
	}
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0 after scrolling back up", m.Offset)
	}
}

func TestProductPickerWindowSize(t *testing.T) {
	m := NewProductListModel(pickerProducts(3))

	m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.Height != 24 {
		t.Errorf("Height = %d after resize, want 24", m.Height)
	}

	m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 5})
	if m.Height != 5 {
		t.Errorf("Height = %d, want the minimum of 5", m.Height)
	}
}

func TestProductPickerView(t *testing.T) {
	m := NewProductListModel(pickerProducts(3))
	m = updateModel(t, m, keyMsg(" "))

	view := m.View()
	if !strings.Contains(view, "Select Products") {
		t.Error("view should carry the title")
	}
	if !strings.Contains(view, "Product 2") {
		t.Error("view should list the products")
	}
	if !strings.Contains(view, "[1/3]") {
		t.Error("view should show the cursor position")
	}
	if !strings.Contains(view, "1 selected") {
		t.Error("view should show the selection count")
	}
}
