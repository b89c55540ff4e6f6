package rest_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kasuganosora/lifeos/api/rest"
	"github.com/kasuganosora/lifeos/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRoutesRequireAuth(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/state", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/habits/h1/checkin", "garbage", nil).Code)
}

func TestOnboardingStartsTutorialAndBriefing(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	assert.Equal(t, "mira", p.State.Character.Name)
	assert.Equal(t, model.ClassScholar, p.State.Character.Class)
	assert.NotEqual(t, "char1", p.State.Character.ID)
	assert.Equal(t, 1, p.State.TutorialStep)
	require.NotNil(t, p.State.DailyBriefing)

	st := decode(t, s.do(http.MethodPost, "/api/ui/hide/daily-briefing", p.Token, nil))
	assert.Nil(t, st.State.DailyBriefing)
	assert.Equal(t, p.Version, st.Version, "ui actions keep the version")

	w := s.do(http.MethodPost, "/api/onboarding", p.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddHabitCompletesTutorial(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	st := decode(t, s.do(http.MethodPost, "/api/habits", p.Token, model.HabitInput{Name: "Stretch", XPValue: 5}))
	assert.Equal(t, 0, st.State.TutorialStep)
	require.NotEmpty(t, st.State.Habits)
	assert.Equal(t, "Stretch", st.State.Habits[0].Name)
	assert.Empty(t, st.State.LoadingStates, "loading flag cleared")

	st = decode(t, s.do(http.MethodPost, "/api/habits/from-template/ht2", p.Token, nil))
	assert.Equal(t, "Drink 8 glasses of water", st.State.Habits[0].Name)
}

func TestCheckInHabit(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	st := decode(t, s.do(http.MethodPost, "/api/habits/h1/checkin", p.Token, nil))
	assert.Greater(t, st.State.Character.XP, p.State.Character.XP)
	assert.Contains(t, st.State.HabitLogs, model.HabitLogEntry{HabitID: "h1", Date: "2024-05-15"})
	assert.Greater(t, st.Version, p.Version)

	again := decode(t, s.do(http.MethodPost, "/api/habits/h1/checkin", p.Token, nil))
	assert.Equal(t, st.State.Character.XP, again.State.Character.XP, "once per day")
	require.NotEmpty(t, again.State.Toasts)
	assert.Equal(t, model.ToastInfo, again.State.Toasts[len(again.State.Toasts)-1].Type)
}

func TestStateVersionHeader(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	w := s.do(http.MethodPost, "/api/habits/h1/checkin", p.Token, nil, rest.StateVersionHeader, version(p.Version))
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/habits/h2/checkin", p.Token, nil, rest.StateVersionHeader, version(p.Version))
	assert.Equal(t, http.StatusConflict, w.Code)
	st := decode(t, s.do(http.MethodGet, "/api/state", p.Token, nil))
	assert.False(t, st.State.HasLog("h2", "2024-05-15"), "stale request changed nothing")

	w = s.do(http.MethodPost, "/api/habits/h2/checkin", p.Token, nil, rest.StateVersionHeader, "abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestRoutes(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	st := decode(t, s.do(http.MethodPost, "/api/quests/p1/objectives/t2/toggle", p.Token, nil))
	q, _, ok := st.State.FindQuest("p1")
	require.True(t, ok)
	assert.True(t, q.Objectives[1].Completed)

	w := s.do(http.MethodPost, "/api/quests/p1/boss-fight", p.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "not a boss quest")

	st = decode(t, s.do(http.MethodPost, "/api/void", p.Token, map[string]string{"text": "learn piano"}))
	require.Len(t, st.State.TheVoid, 1)
	thought := st.State.TheVoid[0].ID

	st = decode(t, s.do(http.MethodPost, "/api/quests", p.Token, map[string]any{
		"name":          "Learn piano",
		"threatLevel":   "Minor",
		"skillId":       "work",
		"objectives":    []map[string]any{{"name": "Buy a keyboard"}},
		"voidThoughtId": thought,
	}))
	assert.Equal(t, "Learn piano", st.State.Quests[0].Name)
	assert.Empty(t, st.State.TheVoid, "thought promoted")

	st = decode(t, s.do(http.MethodPost, "/api/quests/from-template/qt1", p.Token, nil))
	require.NotNil(t, st.State.TemplateForQuest)
	st = decode(t, s.do(http.MethodDelete, "/api/quests/template", p.Token, nil))
	assert.Nil(t, st.State.TemplateForQuest)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/quests/from-template/nope", p.Token, nil).Code)
}

func TestGoalsAndProgress(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	st := decode(t, s.do(http.MethodPost, "/api/goals", p.Token, model.GoalInput{Name: "Run a marathon"}))
	assert.Len(t, st.State.Goals, len(p.State.Goals)+1)

	w := s.do(http.MethodGet, "/api/goals/goal1/progress", p.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress struct{ Archived, Total int }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.Equal(t, 1, progress.Total)

	st = decode(t, s.do(http.MethodDelete, "/api/goals/goal1", p.Token, nil))
	assert.Len(t, st.State.Goals, len(p.State.Goals))
}

func TestShopRoutes(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	st := decode(t, s.do(http.MethodPost, "/api/shop/gear4/purchase", p.Token, nil))
	assert.Contains(t, st.State.Character.Inventory, "gear4")
	assert.Less(t, st.State.Character.Coins, p.State.Character.Coins)

	st = decode(t, s.do(http.MethodPost, "/api/gear/gear4/equip", p.Token, nil))
	require.NotNil(t, st.State.Character.Equipment.Legs)
	assert.Equal(t, "gear4", *st.State.Character.Equipment.Legs)

	st = decode(t, s.do(http.MethodPost, "/api/prestige", p.Token, nil))
	assert.Equal(t, p.State.Character.Level, st.State.Character.Level, "below the prestige level nothing happens")
}

func TestFriendRequestReachesLivePlayer(t *testing.T) {
	s := newServer(t)
	a := s.player(t, "alice")
	b := s.player(t, "bruno")
	bID := b.State.Character.ID

	st := decode(t, s.do(http.MethodPost, "/api/friends/"+bID, a.Token, nil))
	f, _, ok := st.State.FindFriend(bID)
	require.True(t, ok)
	assert.Equal(t, model.FriendPendingOut, f.Status)

	st = decode(t, s.do(http.MethodPost, "/api/friends/"+a.State.Character.ID+"/accept", b.Token, nil))
	f, _, ok = st.State.FindFriend(a.State.Character.ID)
	require.True(t, ok)
	assert.Equal(t, model.FriendAccepted, f.Status)

	st = decode(t, s.do(http.MethodGet, "/api/state", a.Token, nil))
	f, _, _ = st.State.FindFriend(bID)
	assert.Equal(t, model.FriendAccepted, f.Status)

	st = decode(t, s.do(http.MethodDelete, "/api/friends/"+bID, a.Token, nil))
	_, _, ok = st.State.FindFriend(bID)
	assert.False(t, ok)
	st = decode(t, s.do(http.MethodGet, "/api/state", b.Token, nil))
	_, _, ok = st.State.FindFriend(a.State.Character.ID)
	assert.False(t, ok)
}

func TestUISignals(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/ui/hide/nope", p.Token, nil).Code)

	st := decode(t, s.do(http.MethodPost, "/api/ui/tutorial/advance", p.Token, nil))
	assert.Equal(t, 2, st.State.TutorialStep)
	st = decode(t, s.do(http.MethodPost, "/api/ui/tutorial/complete", p.Token, nil))
	assert.Equal(t, 0, st.State.TutorialStep)

	st = decode(t, s.do(http.MethodPost, "/api/ui/ai-chat/toggle", p.Token, nil))
	assert.True(t, st.State.AIChatOpen)

	st = decode(t, s.do(http.MethodPut, "/api/ui/review-date", p.Token, map[string]string{"date": "2024-05-14"}))
	require.NotNil(t, st.State.ReviewCalendarDate)
	assert.Equal(t, "2024-05-14", *st.State.ReviewCalendarDate)

	st = decode(t, s.do(http.MethodPost, "/api/habits/h1/checkin", p.Token, nil))
	require.NotEmpty(t, st.State.Toasts)
	toast := st.State.Toasts[0].ID
	st = decode(t, s.do(http.MethodDelete, "/api/ui/toasts/"+toast, p.Token, nil))
	for _, tt := range st.State.Toasts {
		assert.NotEqual(t, toast, tt.ID)
	}
}

func TestCompanionRoutes(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	w := s.do(http.MethodPost, "/api/companion/chat", p.Token, map[string]string{"message": "Give me a quest to learn guitar", "screen": "/quests"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var chat struct {
		Message model.AIMessage `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chat))
	require.NotNil(t, chat.Message.Plan)

	st := decode(t, s.do(http.MethodPost, "/api/companion/plans/"+chat.Message.ID+"/accept", p.Token, nil))
	assert.Equal(t, chat.Message.Plan.Name, st.State.Quests[0].Name)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/companion/plans/nope/accept", p.Token, nil).Code)

	st = decode(t, s.do(http.MethodPost, "/api/journal/chronicle", p.Token, map[string]string{"content": "Today I practised. It went well."}))
	require.Len(t, st.State.ChronicleEntries, 1)
	assert.Equal(t, "Today I practised.", st.State.ChronicleEntries[0].Summary)
}

func TestLeaderboardAndCatalog(t *testing.T) {
	s := newServer(t)
	p := s.player(t, "mira")

	w := s.do(http.MethodGet, "/api/leaderboard", p.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
		MyRank      int                      `json:"myRank"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, "mira", board.Leaderboard[0].CharacterName)
	assert.Equal(t, 1, board.MyRank)

	w = s.do(http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cat struct {
		Items []model.Item `json:"items"`
		Rules struct {
			WisdomAwardMax int `json:"wisdomAwardMax"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.NotEmpty(t, cat.Items)
	assert.Equal(t, 25, cat.Rules.WisdomAwardMax)
}
