package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GameTestSuite struct {
	suite.Suite
	game    *Game
	testNow time.Time
}

func (s *GameTestSuite) SetupTest() {
	s.testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.game = NewGame("ROOM01", DefaultRules(), s.testNow)
}

func TestGameTestSuite(t *testing.T) {
	suite.Run(t, new(GameTestSuite))
}

// start begins the game and fails the test on error
func (s *GameTestSuite) start() {
	_, err := s.game.Start()
	s.Require().NoError(err)
}

// play submits a word and resolves it with the given verdict
func (s *GameTestSuite) play(word string, valid bool) []Event {
	pending, _, err := s.game.BeginSubmission(word)
	s.Require().NoError(err)
	events, err := s.game.ResolveLookup(pending.Token, valid)
	s.Require().NoError(err)
	return events
}

// tickN advances the countdown n times
func (s *GameTestSuite) tickN(n int) {
	for i := 0; i < n; i++ {
		s.game.Tick()
	}
}

func (s *GameTestSuite) hasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}

func (s *GameTestSuite) TestNewGameInitialState() {
	s.Equal(PhaseNotStarted, s.game.Phase)
	s.False(s.game.Started())
	s.False(s.game.Over())
	s.Equal(0, s.game.CurrentTurn)
	s.Equal(15, s.game.TimerRemaining)
	s.Equal("", s.game.LastWord)
	s.Equal(NoSeat, s.game.FocusSeat)
	for seat, p := range s.game.Players {
		s.Equal(100, p.Score)
		s.Empty(p.Words)
		s.Equal(DefaultPlayerName(seat), p.Name)
	}
}

func (s *GameTestSuite) TestStart() {
	events, err := s.game.Start()
	s.Require().NoError(err)

	s.Equal(PhaseInProgress, s.game.Phase)
	s.True(s.game.Started())
	s.Equal(15, s.game.TimerRemaining)
	s.Equal(0, s.game.CurrentTurn)
	s.Equal(0, s.game.FocusSeat)
	s.Require().Len(events, 1)
	s.Equal(EventGameStarted, events[0].Type)
}

func (s *GameTestSuite) TestStartTwiceFails() {
	s.start()
	_, err := s.game.Start()
	s.ErrorIs(err, ErrInvalidPhase)
}

func (s *GameTestSuite) TestSubmitBeforeStartFails() {
	_, _, err := s.game.BeginSubmission("train")
	s.ErrorIs(err, ErrInvalidPhase)
}

func (s *GameTestSuite) TestTickBeforeStartDoesNothing() {
	s.Nil(s.game.Tick())
	s.Equal(15, s.game.TimerRemaining)
}

func (s *GameTestSuite) TestShortWordsRejectedWithoutMutation() {
	s.start()
	s.tickN(2)

	for _, w := range []string{"", "a", "ab", "abc", "  Cat  "} {
		_, events, err := s.game.BeginSubmission(w)

		var rejection *RejectionError
		s.Require().True(errors.As(err, &rejection), "word %q", w)
		s.ErrorIs(err, ErrWordTooShort)
		s.Equal("Word must be at least 4 letters.", rejection.Message)
		s.Equal("Word must be at least 4 letters.", s.game.Message)
		s.True(s.hasEvent(events, EventWordRejected))
	}

	s.Equal(100, s.game.Players[0].Score)
	s.Equal(100, s.game.Players[1].Score)
	s.Empty(s.game.Players[0].Words)
	s.Equal(0, s.game.CurrentTurn)
	s.Equal(13, s.game.TimerRemaining)
	s.Nil(s.game.Pending)
}

func (s *GameTestSuite) TestReusedWordRejectedRegardlessOfOwner() {
	s.start()
	s.play("train", true) // seat 0
	s.play("nest", true)  // seat 1

	// seat 0 again, trying the word seat 1 played
	_, _, err := s.game.BeginSubmission("nest")
	s.ErrorIs(err, ErrWordAlreadyUsed)
	s.Equal("Word already used.", s.game.Message)

	// and its own word, in a different case
	_, _, err = s.game.BeginSubmission(" TRAIN ")
	s.ErrorIs(err, ErrWordAlreadyUsed)
	s.Equal(0, s.game.CurrentTurn)
}

func (s *GameTestSuite) TestChainingCheck() {
	s.start()
	s.play("apple", true)

	_, _, err := s.game.BeginSubmission("banana")
	s.ErrorIs(err, ErrWrongStartLetter)
	s.Equal("Word must start with 'e'.", s.game.Message)

	pending, _, err := s.game.BeginSubmission("elephant")
	s.Require().NoError(err)
	s.Equal("elephant", pending.Word)
	s.Equal(1, pending.Seat)
}

func (s *GameTestSuite) TestFirstWordHasNoChainConstraint() {
	s.start()
	s.Equal("", s.game.RequiredLetter())

	pending, events, err := s.game.BeginSubmission("Zebra")
	s.Require().NoError(err)
	s.Equal("zebra", pending.Word)
	s.True(s.game.PendingValidation())
	s.Equal(MsgCheckingWord, s.game.Message)
	s.True(s.hasEvent(events, EventWordChecking))
}

func (s *GameTestSuite) TestTrainScenario() {
	s.start()
	s.tickN(5) // 10s left

	events := s.play("train", true)

	s.Equal(90, s.game.Players[0].Score)
	s.Equal([]string{"train"}, s.game.Players[0].Words)
	s.Equal("train", s.game.LastWord)
	s.Equal("n", s.game.RequiredLetter())
	s.Equal(1, s.game.CurrentTurn)
	s.Equal(1, s.game.FocusSeat)
	s.Equal(15, s.game.TimerRemaining)
	s.Equal("", s.game.Message)
	s.True(s.hasEvent(events, EventWordAccepted))
	s.True(s.hasEvent(events, EventTurnSwapped))
}

func (s *GameTestSuite) TestCostUsesTimerAtSubmission() {
	s.start()
	s.tickN(3) // 12s left at submission

	pending, _, err := s.game.BeginSubmission("train")
	s.Require().NoError(err)

	// the lookup takes two more seconds
	s.tickN(2)
	_, err = s.game.ResolveLookup(pending.Token, true)
	s.Require().NoError(err)

	s.Equal(100-(5+3), s.game.Players[0].Score)
}

func (s *GameTestSuite) TestInvalidLookupCostsOnePointWithoutSwap() {
	s.start()
	s.tickN(4)

	events := s.play("xyzzy", false)

	s.Equal(99, s.game.Players[0].Score)
	s.Empty(s.game.Players[0].Words)
	s.Equal(0, s.game.CurrentTurn)
	s.Equal(11, s.game.TimerRemaining)
	s.Equal("", s.game.LastWord)
	s.Equal("Not a valid English word. Try again!", s.game.Message)
	s.False(s.game.PendingValidation())
	s.True(s.hasEvent(events, EventWordInvalid))
	s.False(s.hasEvent(events, EventTurnSwapped))

	// retry is allowed straight away
	_, _, err := s.game.BeginSubmission("train")
	s.NoError(err)
}

func (s *GameTestSuite) TestSecondSubmissionWhilePendingFails() {
	s.start()
	_, _, err := s.game.BeginSubmission("train")
	s.Require().NoError(err)

	_, _, err = s.game.BeginSubmission("tiger")
	s.ErrorIs(err, ErrLookupPending)
}

func (s *GameTestSuite) TestTimeout() {
	s.start()
	s.tickN(14)
	s.Equal(1, s.game.TimerRemaining)
	s.Equal(0, s.game.CurrentTurn)

	events := s.game.Tick()

	s.Equal(102, s.game.Players[0].Score)
	s.Equal(100, s.game.Players[1].Score)
	s.Equal(1, s.game.CurrentTurn)
	s.Equal(15, s.game.TimerRemaining)
	s.Equal("Time up! +2 points added.", s.game.Message)
	s.Equal(1, s.game.FocusSeat)
	s.True(s.hasEvent(events, EventTurnTimedOut))
	s.True(s.hasEvent(events, EventTurnSwapped))
}

func (s *GameTestSuite) TestTimeoutCancelsPendingLookup() {
	s.start()
	s.tickN(10)
	pending, _, err := s.game.BeginSubmission("train")
	s.Require().NoError(err)

	events := s.game.Tick()
	s.Empty(events[1:]) // still counting
	s.tickN(3)
	events = s.game.Tick()
	s.True(s.hasEvent(events, EventLookupCanceled))
	s.Nil(s.game.Pending)
	s.Equal(1, s.game.CurrentTurn)

	// the verdict arrives late and is discarded
	_, err = s.game.ResolveLookup(pending.Token, true)
	s.ErrorIs(err, ErrStaleLookup)
	s.Empty(s.game.Players[0].Words)
	s.Equal(102, s.game.Players[0].Score)
	s.Equal(1, s.game.CurrentTurn)
}

func (s *GameTestSuite) TestRestartDiscardsLateLookup() {
	s.start()
	pending, _, err := s.game.BeginSubmission("train")
	s.Require().NoError(err)

	s.game.Restart()

	_, err = s.game.ResolveLookup(pending.Token, false)
	s.ErrorIs(err, ErrStaleLookup)
	s.Equal(100, s.game.Players[0].Score)
}

func (s *GameTestSuite) TestAbandonDiscardsLateLookup() {
	s.start()
	s.tickN(3)
	pending, _, err := s.game.BeginSubmission("train")
	s.Require().NoError(err)

	events := s.game.Abandon()
	s.True(s.hasEvent(events, EventLookupCanceled))
	s.False(s.game.PendingValidation())

	_, err = s.game.ResolveLookup(pending.Token, false)
	s.ErrorIs(err, ErrStaleLookup)
	s.Equal(100, s.game.Players[0].Score)
	s.Equal(0, s.game.CurrentTurn)
	s.Equal(12, s.game.TimerRemaining)

	// Nothing left to abandon
	s.Empty(s.game.Abandon())
}

func (s *GameTestSuite) TestGameOverOnAcceptedWord() {
	s.start()
	s.game.Players[0].Score = 6

	s.play("train", true)

	s.Equal(1, s.game.Players[0].Score)
	s.False(s.game.Over())

	s.game.Players[1].Score = 3
	events := s.play("night", true)

	s.True(s.game.Over())
	s.Equal(PhaseGameOver, s.game.Phase)
	s.Equal(-2, s.game.Players[1].Score)
	s.Equal(NoSeat, s.game.FocusSeat)
	s.True(s.hasEvent(events, EventGameOver))
	s.False(s.hasEvent(events, EventTurnSwapped))

	winner, ok := s.game.Winner()
	s.True(ok)
	s.Equal(0, winner)

	// no more play once over
	s.Empty(s.game.Tick())
	_, _, err := s.game.BeginSubmission("tiger")
	s.ErrorIs(err, ErrInvalidPhase)
}

func (s *GameTestSuite) TestGameOverIndependentOfTurn() {
	s.start()
	s.play("train", true) // now seat 1's turn

	s.game.Players[1].Score = 1
	events := s.play("nope", false)

	s.True(s.game.Over())
	s.True(s.hasEvent(events, EventGameOver))
	winner, ok := s.game.Winner()
	s.True(ok)
	s.Equal(0, winner)
}

func (s *GameTestSuite) TestWinnerWhenBothScoresAreOut() {
	s.start()
	s.game.Players[0].Score = -3
	s.game.Players[1].Score = 1

	s.play("nope", false) // seat 0 fails, seat 1 untouched
	s.Require().True(s.game.Over())

	s.game.Players[1].Score = 0
	winner, ok := s.game.Winner()
	s.True(ok)
	s.Equal(1, winner)
}

func (s *GameTestSuite) TestFirstToZeroRule() {
	rules := DefaultRules()
	rules.WinRule = WinFirstToZero
	s.game = NewGame("ROOM02", rules, s.testNow)
	s.start()
	s.game.Players[0].Score = 5

	s.play("train", true)

	winner, ok := s.game.Winner()
	s.True(ok)
	s.Equal(0, winner)
	s.Equal(0, *s.game.Snapshot().Winner)
}

func (s *GameTestSuite) TestRestart() {
	s.Require().NoError(s.game.SetPlayerName(0, "Ann"))
	s.start()
	s.tickN(3)
	s.play("train", true)
	s.play("nest", false)

	events := s.game.Restart()

	s.True(s.hasEvent(events, EventGameRestarted))
	s.Equal(PhaseNotStarted, s.game.Phase)
	s.False(s.game.Started())
	s.False(s.game.Over())
	s.Equal(0, s.game.CurrentTurn)
	s.Equal(15, s.game.TimerRemaining)
	s.Equal("", s.game.LastWord)
	s.Equal("", s.game.Message)
	s.Nil(s.game.Pending)
	for _, p := range s.game.Players {
		s.Equal(100, p.Score)
		s.Empty(p.Words)
	}
	s.Equal("Ann", s.game.Players[0].Name)

	// words from the previous round are playable again
	s.start()
	_, _, err := s.game.BeginSubmission("train")
	s.NoError(err)
}

func (s *GameTestSuite) TestRestartFromGameOver() {
	s.start()
	s.game.Players[0].Score = 2
	s.play("train", true)
	s.Require().True(s.game.Over())

	s.game.Restart()
	s.Equal(PhaseNotStarted, s.game.Phase)
	_, err := s.game.Start()
	s.NoError(err)
}

func (s *GameTestSuite) TestSnapshotIsACopy() {
	s.start()
	s.play("train", true)

	snap := s.game.Snapshot()
	snap.Players[0].Words[0] = "mutated"
	snap.Players[0].Score = 0

	s.Equal("train", s.game.Players[0].Words[0])
	s.Equal(95, s.game.Players[0].Score)
	s.True(snap.Started)
	s.False(snap.Over)
	s.Equal("n", snap.RequiredLetter)
	s.Nil(snap.Winner)
}

func (s *GameTestSuite) TestSetPlayerName() {
	s.NoError(s.game.SetPlayerName(1, "  Bo "))
	s.Equal("Bo", s.game.Players[1].Name)

	s.NoError(s.game.SetPlayerName(1, ""))
	s.Equal("Player 2", s.game.Players[1].Name)

	s.ErrorIs(s.game.SetPlayerName(2, "Cy"), ErrInvalidSeat)
}

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseNotStarted, PhaseInProgress, true},
		{PhaseNotStarted, PhaseGameOver, false},
		{PhaseInProgress, PhaseGameOver, true},
		{PhaseInProgress, PhaseNotStarted, true},
		{PhaseGameOver, PhaseNotStarted, true},
		{PhaseGameOver, PhaseInProgress, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestWordCost(t *testing.T) {
	if got := WordCost("train", 15, 10); got != 10 {
		t.Errorf("WordCost = %d, want 10", got)
	}
	if got := WordCost("naïve", 15, 15); got != 5 {
		t.Errorf("WordCost counts runes: got %d, want 5", got)
	}
}
