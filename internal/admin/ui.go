package admin

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Console is a terminal browser over the persisted namespaces.
type Console struct {
	inspector *Inspector

	app    *tview.Application
	pages  *tview.Pages
	nsList *tview.List
	keys   *tview.List
	doc    *tview.TextView
	status *tview.TextView

	ns string
}

func NewConsole(inspector *Inspector) *Console {
	c := &Console{
		inspector: inspector,
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		nsList:    tview.NewList().ShowSecondaryText(false),
		keys:      tview.NewList(),
		doc:       tview.NewTextView().SetDynamicColors(false).SetScrollable(true),
		status:    tview.NewTextView().SetDynamicColors(true),
	}

	c.nsList.SetBorder(true).SetTitle(" Namespaces ")
	c.keys.SetBorder(true).SetTitle(" Documents ")
	c.doc.SetBorder(true).SetTitle(" Document ")

	for _, ns := range inspector.Namespaces() {
		c.nsList.AddItem(ns, "", 0, nil)
	}
	c.nsList.SetChangedFunc(func(_ int, ns, _ string, _ rune) {
		c.showNamespace(ns)
	})
	c.nsList.SetSelectedFunc(func(_ int, _, _ string, _ rune) {
		c.app.SetFocus(c.keys)
	})
	c.keys.SetChangedFunc(func(_ int, key, _ string, _ rune) {
		c.showDocument(key)
	})
	c.keys.SetSelectedFunc(func(_ int, _, _ string, _ rune) {
		c.app.SetFocus(c.doc)
	})

	body := tview.NewFlex().
		AddItem(c.nsList, 20, 0, true).
		AddItem(c.keys, 0, 1, false).
		AddItem(c.doc, 0, 2, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(c.status, 1, 0, false)
	c.pages.AddPage("main", root, true, true)

	c.app.SetInputCapture(c.handleKey)
	c.setStatus("[yellow]tab[-] switch pane  [yellow]d[-] delete  [yellow]q[-] quit")

	if namespaces := inspector.Namespaces(); len(namespaces) > 0 {
		c.showNamespace(namespaces[0])
	}
	return c
}

// Run blocks until the user quits.
func (c *Console) Run() error {
	return c.app.SetRoot(c.pages, true).EnableMouse(true).Run()
}

func (c *Console) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if name, _ := c.pages.GetFrontPage(); name != "main" {
		return ev
	}

	switch ev.Key() {
	case tcell.KeyTab:
		c.cycleFocus()
		return nil
	case tcell.KeyEscape:
		c.app.SetFocus(c.nsList)
		return nil
	}

	switch ev.Rune() {
	case 'q':
		c.app.Stop()
		return nil
	case 'd':
		if c.app.GetFocus() == c.keys && c.keys.GetItemCount() > 0 {
			key, _ := c.keys.GetItemText(c.keys.GetCurrentItem())
			c.confirmDelete(c.ns, key)
			return nil
		}
	}
	return ev
}

func (c *Console) cycleFocus() {
	switch c.app.GetFocus() {
	case c.nsList:
		c.app.SetFocus(c.keys)
	case c.keys:
		c.app.SetFocus(c.doc)
	default:
		c.app.SetFocus(c.nsList)
	}
}

func (c *Console) showNamespace(ns string) {
	c.ns = ns
	c.keys.Clear()
	c.doc.Clear()

	keys, err := c.inspector.Keys(ns)
	if err != nil {
		c.setStatus("[red]" + tview.Escape(err.Error()))
		return
	}
	for _, key := range keys {
		c.keys.AddItem(key, c.inspector.Summary(ns, key), 0, nil)
	}
	c.keys.SetTitle(fmt.Sprintf(" Documents (%d) ", len(keys)))
	if len(keys) > 0 {
		c.showDocument(keys[0])
	}
}

func (c *Console) showDocument(key string) {
	text, err := c.inspector.Document(c.ns, key)
	if err != nil {
		c.setStatus("[red]" + tview.Escape(err.Error()))
		return
	}
	c.doc.SetTitle(fmt.Sprintf(" %s/%s ", c.ns, key))
	c.doc.SetText(text).ScrollToBeginning()
}

func (c *Console) confirmDelete(ns, key string) {
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Delete %s/%s?", ns, key)).
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			c.pages.RemovePage("confirm")
			c.app.SetFocus(c.keys)
			if label != "Delete" {
				return
			}
			if err := c.inspector.Delete(ns, key); err != nil {
				c.setStatus("[red]" + tview.Escape(err.Error()))
				return
			}
			c.setStatus(fmt.Sprintf("[green]deleted %s/%s", tview.Escape(ns), tview.Escape(key)))
			c.showNamespace(ns)
		})
	c.pages.AddPage("confirm", modal, false, true)
	c.app.SetFocus(modal)
}

func (c *Console) setStatus(text string) {
	c.status.SetText(text)
}
