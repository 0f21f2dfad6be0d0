package core

import tea "github.com/charmbracelet/bubbletea/v2"

// FocusableBase tracks whether a component owns keyboard input.
type FocusableBase struct {
	focused bool
}

func (f *FocusableBase) IsFocused() bool {
	return f.focused
}

func (f *FocusableBase) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *FocusableBase) Blur() tea.Cmd {
	f.focused = false
	return nil
}

// SizeableBase stores the size handed down by the parent on resize.
type SizeableBase struct {
	Width  int
	Height int
}

func (s *SizeableBase) SetSize(width, height int) tea.Cmd {
	s.Width = width
	s.Height = height
	return nil
}

// Size returns the last size set.
func (s *SizeableBase) Size() (width, height int) {
	return s.Width, s.Height
}
