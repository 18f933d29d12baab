package tui

import tea "github.com/charmbracelet/bubbletea"

// Modal is a self-contained modal that owns its own Update/View lifecycle.
// Modals are managed via a stack on DashboardModel; the topmost modal
// receives all key input and renders over the dashboard.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// ModalStackState holds the open modals, topmost last.
type ModalStackState struct {
	modalStack []Modal
}

func (s *ModalStackState) pushModal(md Modal) {
	for _, open := range s.modalStack {
		if open.ID() == md.ID() {
			return
		}
	}
	s.modalStack = append(s.modalStack, md)
}

func (s *ModalStackState) popModal() {
	if len(s.modalStack) > 0 {
		s.modalStack = s.modalStack[:len(s.modalStack)-1]
	}
}

func (s *ModalStackState) topModal() Modal {
	if len(s.modalStack) == 0 {
		return nil
	}
	return s.modalStack[len(s.modalStack)-1]
}

// pushModalCmd asks the dashboard to open md.
func pushModalCmd(md Modal) tea.Cmd {
	return actionMsg(ActionMsg{Action: ActionPushModal, Payload: md})
}
