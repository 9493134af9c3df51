package views

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// SetError shows err, or clears the message when err is nil
func (s *ViewState) SetError(err error) {
	if err == nil {
		s.ClearMessage()
		return
	}
	s.SetMessage(err.Error(), true)
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages for view switching
type (
	SwitchToFindMsg struct{}
	SwitchToHelpMsg struct{}
	SwitchToTreeMsg struct{}
)

// OpenNoteMsg asks the app to open a note, confirming first when the note
// is potential
type OpenNoteMsg struct {
	ID string
}

// ConfirmOpenMsg is sent once opening a potential note was confirmed
type ConfirmOpenMsg struct {
	ID string
}

// SortChangedMsg reports the sort order chosen in the tree
type SortChangedMsg struct {
	Order string
}
