package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"helm/internal/client"
	"helm/internal/store"
	"helm/internal/types"
)

func fetchSessionsCmd(api SessionAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		sessions, err := api.ListSessions(ctx)
		return sessionsMsg{sessions: sessions, err: err}
	}
}

func createSessionCmd(api SessionAPI, title string, kind types.SessionKind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		session, err := api.CreateSession(ctx, client.CreateSessionRequest{Title: title, Kind: kind})
		return sessionCreatedMsg{session: session, err: err}
	}
}

func deleteSessionCmd(api SessionAPI, repo store.Repository, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		if err := api.DeleteSession(ctx, id); err != nil {
			return sessionDeletedMsg{id: id, err: err}
		}
		if repo != nil {
			_ = repo.Sessions().Delete(ctx, id)
		}
		return sessionDeletedMsg{id: id}
	}
}

// loadStoredSessionsCmd hydrates the session list from local storage so the
// sidebar is populated before the orchestrator round-trip completes.
func loadStoredSessionsCmd(repo store.Repository) tea.Cmd {
	return func() tea.Msg {
		if repo == nil {
			return storedSessionsMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sessions, err := repo.Sessions().List(ctx)
		return storedSessionsMsg{sessions: sessions, err: err}
	}
}

func persistSessionsCmd(repo store.Repository, sessions []*types.Session) tea.Cmd {
	return func() tea.Msg {
		if repo == nil || len(sessions) == 0 {
			return sessionsPersistedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, session := range sessions {
			if _, err := repo.Sessions().Upsert(ctx, session); err != nil {
				return sessionsPersistedMsg{err: err}
			}
		}
		return sessionsPersistedMsg{}
	}
}

func fetchHistoryCmd(api SessionAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		resp, err := api.History(ctx, id, defaultHistoryLines)
		if err != nil {
			return historyMsg{id: id, err: err}
		}
		return historyMsg{id: id, items: resp.Items}
	}
}

func openFeedCmd(api SessionAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ch, cancel, err := api.EventStream(context.Background(), id)
		return feedMsg{id: id, ch: ch, cancel: cancel, err: err}
	}
}

func submitTaskCmd(api SessionAPI, id, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		resp, err := api.SubmitTask(ctx, id, client.SubmitTaskRequest{Text: text})
		if err != nil {
			return submitMsg{id: id, text: text, err: err}
		}
		return submitMsg{id: id, taskID: resp.TaskID, text: text}
	}
}

func cancelTaskCmd(api SessionAPI, id, taskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.CancelTask(ctx, id, taskID)
		return cancelMsg{id: id, taskID: taskID, err: err}
	}
}

func answerFollowupCmd(api SessionAPI, id, questionID, answer string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.AnswerFollowup(ctx, id, client.AnswerFollowupRequest{QuestionID: questionID, Answer: answer})
		return followupAnsweredMsg{id: id, questionID: questionID, err: err}
	}
}

func respondApprovalCmd(api SessionAPI, id, approvalID string, approve bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.RespondApproval(ctx, id, client.RespondApprovalRequest{ApprovalID: approvalID, Approve: approve})
		return approvalRespondedMsg{id: id, approvalID: approvalID, approved: approve, err: err}
	}
}

func loadAppStateCmd(repo store.Repository) tea.Cmd {
	return func() tea.Msg {
		if repo == nil {
			return appStateLoadedMsg{state: &types.AppState{}}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		state, err := repo.AppState().Load(ctx)
		return appStateLoadedMsg{state: state, err: err}
	}
}

func saveAppStateCmd(repo store.Repository, state types.AppState) tea.Cmd {
	return func() tea.Msg {
		if repo == nil {
			return appStateSavedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := repo.AppState().Save(ctx, &state)
		return appStateSavedMsg{err: err}
	}
}

func copyTextCmd(text, success string) tea.Cmd {
	return func() tea.Msg {
		_, err := copyTextToClipboard(text)
		if err != nil {
			return clipboardResultMsg{err: err}
		}
		return clipboardResultMsg{success: success}
	}
}
