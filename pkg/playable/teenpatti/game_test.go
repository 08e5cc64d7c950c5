package teenpatti

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teenpatti-server/internal/rng"
	"teenpatti-server/pkg/deck"
)

func TestNewGame(t *testing.T) {
	g, err := NewGame(logrus.StandardLogger(), "room-1", DefaultOptions())
	assert.NoError(t, err)
	assert.NotNil(t, g)
	assert.Equal(t, StateWaiting, g.State())
	assert.Equal(t, "teen patti", g.Name())
	assert.Equal(t, "room-1", g.RoomID())

	opts := DefaultOptions()
	opts.MinPlayers = 1
	g, err = NewGame(logrus.StandardLogger(), "room-1", opts)
	assert.Nil(t, g)
	assert.EqualError(t, err, "invalid table option MinPlayers: must be at least 2")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "waiting", StateWaiting.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "round_end", StateRoundEnd.String())
	assert.Equal(t, "finished", StateFinished.String())

	b, err := StateRoundEnd.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "round_end", string(b))
}

func TestGame_BootAndFirstBet(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)

	a.True(g.StartGame())
	a.Equal(StatePlaying, g.State())
	a.Equal(20, g.Pot())
	a.Equal(10, g.stake)
	a.Equal(990, balanceOf(g, "u1"))
	a.Equal(990, balanceOf(g, "u2"))
	a.Equal("u1", g.TurnUserID())

	for _, p := range g.participants {
		a.Len(p.hand, HandSize)
		a.True(p.dealtIn)
	}

	a.NoError(g.PlaceBet("u1", 10))
	a.Equal(30, g.Pot())
	a.Equal(980, balanceOf(g, "u1"))
	a.Equal(10, g.stake)
	a.Equal("u2", g.TurnUserID())
}

func TestGame_StartGame_Guards(t *testing.T) {
	a := assert.New(t)

	g := newTestGame(t, testOptions(), 1000)
	a.False(g.StartGame())
	a.Equal(StateWaiting, g.State())

	opts := testOptions()
	opts.MinBalance = 0
	g = newTestGame(t, opts, 1000, 5)
	a.False(g.StartGame(), "only one player can pay the boot")

	g = newTestGame(t, opts, 1000, 5, 1000)
	a.True(g.StartGame())
	a.Equal(20, g.Pot())
	a.False(g.participants[1].dealtIn)
	a.Equal(5, balanceOf(g, "u2"))
	a.Len(g.roster, 2)

	a.False(g.StartGame(), "cannot start while playing")
}

func TestGame_PlaceBet_Rejected(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())

	err := g.PlaceBet("u2", 10)
	a.ErrorIs(err, ErrNotYourTurn)

	var ae *ActionError
	a.ErrorAs(err, &ae)
	a.Equal("u1", ae.TurnUserID)
	a.Equal(10, ae.MinBet)
	a.Equal(990, ae.MaxBet)

	err = g.PlaceBet("u1", 5)
	a.ErrorIs(err, ErrInvalidAmount)
	a.EqualError(err, "bet must be between 10 and 990")

	a.ErrorIs(g.PlaceBet("u1", 991), ErrInvalidAmount)
	a.ErrorIs(g.PlaceBet("u1", 0), ErrInvalidAmount)
	a.ErrorIs(g.PlaceBet("u1", -10), ErrInvalidAmount)
	a.ErrorIs(g.PlaceBet("u3", 10), ErrPlayerNotFound)

	a.Equal(20, g.Pot())
	a.Equal(990, balanceOf(g, "u1"))
	a.Equal("u1", g.TurnUserID())

	g = newTestGame(t, testOptions(), 1000, 1000)
	a.ErrorIs(g.PlaceBet("u1", 10), ErrNotPlaying)
}

func TestGame_SeenMultiplier(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())

	a.NoError(g.SeeCards("u1"))
	opts, err := g.GetBetOptions("u1")
	a.NoError(err)
	a.Equal(20, opts.Chaal)
	a.ErrorIs(g.PlaceBet("u1", 10), ErrInvalidAmount)

	a.NoError(g.PlaceBet("u1", 20))
	a.Equal(10, g.stake, "stake is kept blind-equivalent")
	a.Equal(0, g.raiseCount)

	// blind raise
	a.NoError(g.PlaceBet("u2", 30))
	a.Equal(30, g.stake)
	a.Equal(1, g.raiseCount)

	opts, err = g.GetBetOptions("u1")
	a.NoError(err)
	a.Equal(60, opts.Chaal)

	a.NoError(g.SeeCards("u2"))
	opts, err = g.GetBetOptions("u1")
	a.NoError(err)
	a.Equal(30, opts.Chaal, "no double once everyone has seen")

	// seeing does not consume the turn
	a.Equal("u1", g.TurnUserID())
}

func TestGame_BetOptions(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.BetCeiling = 50
	g := newTestGame(t, opts, 1000, 1000)
	a.True(g.StartGame())

	bo, err := g.GetBetOptions("u1")
	a.NoError(err)
	a.Equal(10, bo.Chaal)
	a.Equal(10, bo.MinBet)
	a.Equal(50, bo.MaxBet)
	a.Equal(20, bo.Raise2x)
	a.Equal(40, bo.Raise4x)
	a.False(bo.CanShow, "no bet yet")
	a.False(bo.CanSideShow)
	a.Equal(0, bo.AllInAmount)

	a.ErrorIs(g.PlaceBet("u1", 60), ErrInvalidAmount)
	a.NoError(g.PlaceBet("u1", 50))
	a.Equal(50, g.stake)

	bo, err = g.GetBetOptions("u2")
	a.NoError(err)
	a.Equal(50, bo.MaxBet)
	a.Equal(0, bo.Raise2x)
}

func TestGame_AllIn(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 25)
	a.True(g.StartGame())

	a.NoError(g.PlaceBet("u1", 20))
	bo, err := g.GetBetOptions("u2")
	a.NoError(err)
	a.Equal(15, bo.AllInAmount)
	a.Equal(15, bo.MinBet)
	a.Equal(15, bo.MaxBet)

	a.ErrorIs(g.PlaceBet("u2", 10), ErrInvalidAmount)
	a.NoError(g.PlaceBet("u2", 15))
	a.Equal(0, balanceOf(g, "u2"))
	a.Equal(20, g.stake)
	a.Equal(55, g.Pot())
}

func TestGame_TurnOrder(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)
	a.True(g.StartGame())

	a.Equal("u1", g.TurnUserID())
	a.NoError(g.PlaceBet("u1", 10))
	a.Equal("u2", g.TurnUserID())
	a.NoError(g.Fold("u2"))
	a.Equal("u3", g.TurnUserID())
	a.NoError(g.PlaceBet("u3", 10))
	a.Equal("u1", g.TurnUserID(), "wraps around")
	a.NoError(g.PlaceBet("u1", 10))
	a.Equal("u3", g.TurnUserID(), "skips folded seats")

	a.ErrorIs(g.Fold("u2"), ErrNotInRound)
}

func TestGame_Fold_Attrition(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)

	var events []string
	g.BroadcastFn = func(ev Event) {
		events = append(events, ev.Name)
	}

	a.True(g.StartGame())
	a.NoError(g.Fold("u1"))

	a.Equal(StateRoundEnd, g.State())
	result := g.LastResult()
	a.NotNil(result)
	a.Equal("u2", result.WinnerUserID)
	a.Equal(ReasonFold, result.Reason)
	a.Equal("u1", result.CausingUserID)
	a.Equal(20, result.Pot)
	a.Equal(1010, balanceOf(g, "u2"))
	a.Equal(990, balanceOf(g, "u1"))
	a.Len(result.Reveal, 2)
	a.True(result.Reveal[0].Folded)
	a.True(result.Reveal[1].Winner)
	a.NotEmpty(result.Reveal[0].HandName)
	a.Equal(map[string]int{"u1": 990, "u2": 1010}, result.Balances)

	a.Equal([]string{EventRoundStarted, EventRoundEnded}, events)
	a.ErrorIs(g.Fold("u2"), ErrNotPlaying)
}

func TestGame_Show(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.Rake = 0.05
	g := newTestGame(t, opts, 1000, 1000)
	a.True(g.StartGame())
	setHands(g, "14c,14d,14h", "2c,3d,5h")

	a.ErrorIs(g.Show("u1"), ErrShowNotAllowed, "must bet before a show")

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.Show("u1"))

	result := g.LastResult()
	a.Equal(StateRoundEnd, g.State())
	a.Equal(ReasonShow, result.Reason)
	a.Equal("u1", result.WinnerUserID)
	a.Equal(50, result.Pot)
	a.Equal(2, result.Rake)
	a.Equal(48, result.Won)
	a.Equal(1018, balanceOf(g, "u1"))
	a.Equal(980, balanceOf(g, "u2"))
	a.Equal("Trail of Aces", result.Reveal[0].HandName)

	// pot conservation
	a.Equal(2000, balanceOf(g, "u1")+balanceOf(g, "u2")+result.Rake)
}

func TestGame_Show_TieGoesToFirstSeat(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())
	setHands(g, "14c,13d,11h", "14d,13s,11c")

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.Show("u2"))

	a.Equal("u1", g.LastResult().WinnerUserID)
}

func TestGame_Show_OnlyWithTwoPlayers(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)
	a.True(g.StartGame())

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))
	a.ErrorIs(g.Show("u1"), ErrShowNotAllowed)

	a.NoError(g.Fold("u1"))
	a.NoError(g.Show("u2"))
	a.Equal(StateRoundEnd, g.State())
}

func TestGame_SideShow_TieChallengerLoses(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)

	var notices []*SideShowNotice
	g.BroadcastFn = func(ev Event) {
		if ev.SideShow != nil {
			notices = append(notices, ev.SideShow)
		}
	}

	a.True(g.StartGame())
	setHands(g, "14c,13d,11h", "14d,13s,11c", "2c,5d,9h")
	a.NoError(g.SeeCards("u1"))
	a.NoError(g.SeeCards("u2"))
	a.NoError(g.SeeCards("u3"))

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))
	a.NoError(g.PlaceBet("u1", 10))

	bo, err := g.GetBetOptions("u2")
	a.NoError(err)
	a.True(bo.CanSideShow)
	a.Equal("u1", bo.SideShowTargetUserID)

	a.ErrorIs(g.RequestSideShow("u2", "u3"), ErrSideShowNotAllowed)
	a.NoError(g.RequestSideShow("u2", "u1"))
	a.Equal("u2", g.TurnUserID(), "requester keeps the turn")
	a.ErrorIs(g.RespondToSideShow("u3", true), ErrNoPendingSideShow)

	ps, err := g.PrivateState("u1")
	a.NoError(err)
	a.Equal("u2", ps.PendingSideShow.FromUserID)

	a.NoError(g.RespondToSideShow("u1", true))
	a.True(g.participants[1].folded, "challenger loses a tie")
	a.False(g.participants[0].folded)
	a.Equal("u3", g.TurnUserID())
	a.Equal(StatePlaying, g.State())

	a.Len(notices, 2)
	a.Equal("u2", notices[1].LoserUserID)
}

func TestGame_SideShow_Decline(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)
	a.True(g.StartGame())
	for _, userID := range []string{"u1", "u2", "u3"} {
		a.NoError(g.SeeCards(userID))
	}

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))
	a.NoError(g.PlaceBet("u1", 10))

	a.NoError(g.RequestSideShow("u2", "u1"))
	a.ErrorIs(g.RequestSideShow("u2", "u1"), ErrSideShowNotAllowed, "already pending")
	a.NoError(g.RespondToSideShow("u1", false))
	a.Equal("u2", g.TurnUserID())
	a.Equal(3, g.inPlayCount())

	// one request per turn
	a.ErrorIs(g.RequestSideShow("u2", "u1"), ErrSideShowNotAllowed)
	bo, err := g.GetBetOptions("u2")
	a.NoError(err)
	a.False(bo.CanSideShow)

	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))
	a.NoError(g.PlaceBet("u1", 10))

	// betting withdraws a pending request
	a.NoError(g.RequestSideShow("u2", "u1"))
	a.NoError(g.PlaceBet("u2", 10))
	a.ErrorIs(g.RespondToSideShow("u1", true), ErrNoPendingSideShow)
}

func TestGame_SideShow_KeepsDeadline(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.TurnTimeLimit = time.Minute
	g := newTestGame(t, opts, 1000, 1000, 1000)
	g.Dispatch = func(fn func()) {}
	defer g.Close()

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	g.now = func() time.Time {
		return start
	}

	a.True(g.StartGame())
	for _, userID := range []string{"u1", "u2", "u3"} {
		a.NoError(g.SeeCards(userID))
	}

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))
	a.NoError(g.PlaceBet("u1", 10))

	deadline := *g.PublicState().TurnDeadline
	g.now = func() time.Time {
		return start.Add(30 * time.Second)
	}

	a.NoError(g.RequestSideShow("u2", "u1"))
	a.Equal(deadline, *g.PublicState().TurnDeadline)

	a.NoError(g.RespondToSideShow("u1", false))
	a.Equal(deadline, *g.PublicState().TurnDeadline)
	a.ErrorIs(g.RequestSideShow("u2", "u1"), ErrSideShowNotAllowed)
}

func TestGame_RespondToSideShow_RejectedLeavesChallenge(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)
	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u1", 10))

	// u3 does not hold the turn, so their challenge cannot be answered
	challenge := &SideShowChallenge{FromUserID: "u3"}
	g.participants[1].pendingSideShow = challenge

	a.ErrorIs(g.RespondToSideShow("u2", true), ErrNoPendingSideShow)
	a.Same(challenge, g.participants[1].pendingSideShow)
	a.Equal(3, g.inPlayCount())
	a.Equal("u2", g.TurnUserID())
}

func TestGame_SideShow_Guards(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)
	a.True(g.StartGame())

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.SeeCards("u2"))
	a.ErrorIs(g.RequestSideShow("u2", "u1"), ErrSideShowNotAllowed, "must have bet")

	a.NoError(g.PlaceBet("u2", 20))
	a.NoError(g.PlaceBet("u3", 10))
	a.NoError(g.PlaceBet("u1", 10))

	bo, err := g.GetBetOptions("u2")
	a.NoError(err)
	a.False(bo.CanSideShow, "target has not seen")
	a.ErrorIs(g.RequestSideShow("u2", "u1"), ErrSideShowNotAllowed)

	g = newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())
	a.NoError(g.SeeCards("u1"))
	a.NoError(g.SeeCards("u2"))
	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.ErrorIs(g.RequestSideShow("u1", "u2"), ErrSideShowNotAllowed, "two players must show")
}

func TestGame_ExpireTurn_AllIn(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 15, 1000)
	a.True(g.StartGame())
	a.Equal(5, balanceOf(g, "u1"))

	g.expireTurn("u1")
	a.Equal(StatePlaying, g.State())
	a.Equal(0, balanceOf(g, "u1"))
	a.Equal(25, g.Pot())
	a.False(g.participants[0].folded, "all-in is preferred over folding")
	a.Equal(1, g.participants[0].consecutiveTimeouts)
	a.Equal("u2", g.TurnUserID())
}

func TestGame_ExpireTurn_Chaal(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())

	// a stale expiry for someone else is ignored
	g.expireTurn("u2")
	a.Equal("u1", g.TurnUserID())
	a.Equal(20, g.Pot())

	g.expireTurn("u1")
	a.Equal(30, g.Pot())
	a.Equal(980, balanceOf(g, "u1"))
	a.Equal("u2", g.TurnUserID())

	// a voluntary action resets the count
	a.NoError(g.PlaceBet("u2", 10))
	g.expireTurn("u1")
	a.NoError(g.PlaceBet("u2", 10))
	a.Equal(2, g.participants[0].consecutiveTimeouts)
	a.Equal(0, g.participants[1].consecutiveTimeouts)
}

func TestGame_ExpireTurn_FreeShowThenFold(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 20, 1000)
	a.True(g.StartGame())
	setHands(g, "14c,14d,14h", "2c,3d,5h")

	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.Equal(0, balanceOf(g, "u1"))

	g.expireTurn("u1")
	a.Equal(StateRoundEnd, g.State())
	a.Equal(ReasonShow, g.LastResult().Reason)
	a.Equal("u1", g.LastResult().WinnerUserID)

	g = newTestGame(t, testOptions(), 20, 1000, 1000)
	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))

	g.expireTurn("u1")
	a.True(g.participants[0].folded, "no legal bet and no show: fold")
	a.Equal("u2", g.TurnUserID())
}

func TestGame_ExpireTurn_RemovesAfterRepeatedTimeouts(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.MaxConsecutiveTimeouts = 2
	g := newTestGame(t, opts, 1000, 1000)

	var departed *Departure
	g.BroadcastFn = func(ev Event) {
		if ev.Departed != nil {
			departed = ev.Departed
		}
	}

	a.True(g.StartGame())
	g.expireTurn("u1")
	a.NoError(g.PlaceBet("u2", 10))
	g.expireTurn("u1")

	a.Equal(1, g.SeatedCount())
	a.Equal(StateRoundEnd, g.State())
	a.Equal(ReasonTimeout, g.LastResult().Reason)
	a.Equal("u2", g.LastResult().WinnerUserID)
	a.Equal("u1", g.LastResult().CausingUserID)
	a.Len(g.LastResult().Reveal, 2, "departed players are still revealed")

	a.NotNil(departed)
	a.Equal(RemovedTurnTimeout, departed.Reason)
	a.Equal(980, departed.Balance)
}

func TestGame_TurnTimer_NeedsDispatch(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.TurnTimeLimit = 10 * time.Millisecond
	g := newTestGame(t, opts, 1000, 1000)

	a.True(g.StartGame())
	a.False(g.timer.armed())
	a.Nil(g.PublicState().TurnDeadline)
	a.Equal("u1", g.TurnUserID())
}

func TestGame_TurnTimer_Fires(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.TurnTimeLimit = 10 * time.Millisecond
	g := newTestGame(t, opts, 1000, 1000)

	dispatched := make(chan func(), 4)
	g.Dispatch = func(fn func()) {
		dispatched <- fn
	}

	a.True(g.StartGame())
	a.True(g.timer.armed())
	a.NotNil(g.PublicState().TurnDeadline)

	select {
	case fn := <-dispatched:
		fn()
	case <-time.After(time.Second):
		t.Fatal("turn timer did not fire")
	}

	a.Equal(30, g.Pot())
	a.Equal("u2", g.TurnUserID())
	g.Close()
}

func TestTurnTimer_StaleExpiryIgnored(t *testing.T) {
	timer := &turnTimer{limit: 5 * time.Millisecond}
	dispatched := make(chan func(), 1)
	fired := false

	timer.start(time.Now(), func(fn func()) {
		dispatched <- fn
	}, func() {
		fired = true
	})

	var fn func()
	select {
	case fn = <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	// the turn moved on after the timer fired but before the run loop got to it
	timer.clear()
	fn()
	assert.False(t, fired)

	timer.limit = 0
	timer.start(time.Now(), nil, nil)
	assert.False(t, timer.armed())
	assert.True(t, timer.deadline().IsZero())
}

func TestGame_RemovePlayer_Attrition(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u1", 10))

	dep, err := g.RemovePlayer("u2", RemovedExit)
	a.NoError(err)
	a.Equal(990, dep.Balance)
	a.Equal(RemovedExit, dep.Reason)

	a.Equal(StateRoundEnd, g.State())
	a.Equal(ReasonPlayerExit, g.LastResult().Reason)
	a.Equal("u1", g.LastResult().WinnerUserID)
	a.Equal("u2", g.LastResult().CausingUserID)
	a.Equal(1010, balanceOf(g, "u1"))

	_, err = g.RemovePlayer("u2", RemovedExit)
	a.ErrorIs(err, ErrPlayerNotFound)
}

func TestGame_RemovePlayer_CurrentTurn(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000, 1000)
	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.PlaceBet("u2", 10))
	a.NoError(g.PlaceBet("u3", 10))

	// u4 leaves on their turn, the turn wraps to u1
	_, err := g.RemovePlayer("u4", RemovedDisconnect)
	a.NoError(err)
	a.Equal(StatePlaying, g.State())
	a.Equal("u1", g.TurnUserID())

	// someone before the turn leaves, the pointer follows the player
	a.NoError(g.PlaceBet("u1", 10))
	_, err = g.RemovePlayer("u1", RemovedExit)
	a.NoError(err)
	a.Equal("u2", g.TurnUserID())
	a.Equal(StatePlaying, g.State())
}

func TestGame_RemovePlayer_TurnSettledBeforeBroadcast(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000, 1000)

	var events []string
	var left *Event
	g.BroadcastFn = func(ev Event) {
		events = append(events, ev.Name)
		if ev.Name == EventPlayerLeft {
			left = &ev
		}
	}

	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u1", 10))
	a.NoError(g.Fold("u2"))
	a.NoError(g.PlaceBet("u3", 10))
	a.NoError(g.PlaceBet("u4", 10))
	a.Equal("u1", g.TurnUserID())

	events = nil
	_, err := g.RemovePlayer("u1", RemovedExit)
	a.NoError(err)

	// u2 folded, so the turn skips them
	a.Equal([]string{EventPlayerLeft, EventTurnChanged}, events)
	if a.NotNil(left) {
		a.Equal("u3", left.State.TurnUserID)
		a.Equal(StatePlaying, left.State.State)
	}

	a.Equal("u3", g.TurnUserID())
}

func TestGame_RemovePlayer_ResolvesBeforeBroadcast(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)

	var left *Event
	g.BroadcastFn = func(ev Event) {
		if ev.Name == EventPlayerLeft {
			left = &ev
		}
	}

	a.True(g.StartGame())
	_, err := g.RemovePlayer("u1", RemovedTurnTimeout)
	a.NoError(err)

	if a.NotNil(left) {
		a.Equal(StateRoundEnd, left.State.State)
		a.Empty(left.State.TurnUserID)
		a.Equal(ReasonTimeout, left.State.LastRoundResult.Reason)
	}
}

func TestGame_RemovePlayer_AbandonsRound(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.MinPlayers = 3
	g := newTestGame(t, opts, 1000, 1000, 1000)

	var events []string
	g.BroadcastFn = func(ev Event) {
		events = append(events, ev.Name)
	}

	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u1", 10))
	a.Equal(40, g.Pot())

	dep, err := g.RemovePlayer("u3", RemovedExit)
	a.NoError(err)
	a.Equal(990, dep.Balance)

	a.Equal(StateWaiting, g.State())
	a.Nil(g.LastResult())
	a.Equal(0, g.Pot())
	a.Equal(1005, balanceOf(g, "u1"))
	a.Equal(1005, balanceOf(g, "u2"))
	a.Equal([]string{EventRoundStarted, EventBetPlaced, EventRoundAbandoned, EventPlayerLeft}, events)
}

func TestGame_RemovePlayer_Waiting(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)

	dep, err := g.RemovePlayer("u1", RemovedExit)
	a.NoError(err)
	a.Equal(1000, dep.Balance)
	a.Equal(StateWaiting, g.State())
	a.Equal(1, g.SeatedCount())
}

func TestGame_Join(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.MaxPlayers = 3
	g, err := NewGame(logrus.StandardLogger(), "room-1", opts)
	require.NoError(t, err)

	autoStart, err := g.Join("c1", "u1", "Alice", 1000, "")
	a.NoError(err)
	a.False(autoStart)

	_, err = g.Join("c2", "u2", "Bob", 5, "")
	a.ErrorIs(err, ErrInsufficientBalance)

	autoStart, err = g.Join("c2", "u2", "", 1000, "")
	a.NoError(err)
	a.True(autoStart)
	a.NotEmpty(g.participants[1].DisplayName)

	_, err = g.Join("c3", "u3", "Carol", 1000, "")
	a.NoError(err)
	a.True(g.IsFull())

	_, err = g.Join("c4", "u4", "Dan", 1000, "")
	a.ErrorIs(err, ErrRoomFull)

	// seats are reused
	_, err = g.RemovePlayer("u2", RemovedExit)
	a.NoError(err)
	_, err = g.Join("c4", "u4", "Dan", 1000, "")
	a.NoError(err)
	a.Equal(1, g.participants[1].Seat)
	a.Equal("u4", g.participants[1].UserID)
}

func TestGame_Join_StaleSession(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)

	var departed []*Departure
	g.BroadcastFn = func(ev Event) {
		if ev.Departed != nil {
			departed = append(departed, ev.Departed)
		}
	}

	_, err := g.Join("c1-new", "u1", "Player u1", 500, "")
	a.NoError(err)
	a.Equal(2, g.SeatedCount())
	a.Len(departed, 1)
	a.Equal(RemovedStaleSession, departed[0].Reason)

	conn, ok := g.SeatConnectionID("u1")
	a.True(ok)
	a.Equal("c1-new", conn)
	a.Equal(1000, balanceOf(g, "u1"), "seat balance carries over")
}

func TestGame_Join_ReconnectsDuringRound(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())

	a.NoError(g.DisconnectPlayer("u1"))
	a.False(g.PublicState().Participants[0].Connected)

	autoStart, err := g.Join("c1-new", "u1", "Player u1", 1000, "")
	a.NoError(err)
	a.False(autoStart)
	a.Equal(StatePlaying, g.State())
	a.Equal(990, balanceOf(g, "u1"))
	a.True(g.PublicState().Participants[0].Connected)

	conn, _ := g.SeatConnectionID("u1")
	a.Equal("c1-new", conn)
	a.ErrorIs(g.ReconnectPlayer("nobody", "c9"), ErrPlayerNotFound)
}

func TestGame_Join_DuringRound(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000, 1000)
	_, err := g.RemovePlayer("u1", RemovedExit)
	require.NoError(t, err)

	a.True(g.StartGame())
	a.NoError(g.PlaceBet("u2", 10))
	a.Equal("u3", g.TurnUserID())

	_, err = g.Join("c4", "u4", "Player u4", 1000, "")
	a.NoError(err)
	a.Equal(0, g.participants[0].Seat)
	a.Equal("u3", g.TurnUserID(), "turn pointer follows the seat")
	a.False(g.participants[0].dealtIn)

	a.NoError(g.PlaceBet("u3", 10))
	a.Equal("u2", g.TurnUserID(), "undealt seats are skipped")
}

func TestGame_StartNextRound(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)

	_, _, err := g.StartNextRound()
	a.ErrorIs(err, ErrNotRoundEnd)

	a.True(g.StartGame())
	a.NoError(g.Fold("u1"))

	started, removed, err := g.StartNextRound()
	a.NoError(err)
	a.True(started)
	a.Empty(removed)
	a.Nil(g.LastResult())
	a.Equal(StatePlaying, g.State())
	a.Equal(2, g.roundNumber)
	a.Equal(20, g.Pot())
}

func TestGame_StartNextRound_ValidatesBalances(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 15, 1000)
	a.True(g.StartGame())
	a.NoError(g.Fold("u1"))

	started, removed, err := g.StartNextRound()
	a.NoError(err)
	a.False(started)
	a.Len(removed, 1)
	a.Equal("u1", removed[0].UserID)
	a.Equal(RemovedInsufficientBalance, removed[0].Reason)
	a.Equal(5, removed[0].Balance)
	a.Equal(StateWaiting, g.State())
	a.Equal(1, g.SeatedCount())
}

func TestGame_PotConservation(t *testing.T) {
	a := assert.New(t)
	opts := testOptions()
	opts.Rake = 0.1
	g := newTestGame(t, opts, 1000, 700, 300, 45)
	a.True(g.StartGame())

	bets := func() int {
		sum := 0
		for _, p := range g.roster {
			sum += p.roundBet
		}
		return sum
	}

	a.NoError(g.PlaceBet("u1", 30))
	a.Equal(g.Pot(), bets())
	a.NoError(g.SeeCards("u2"))
	a.NoError(g.PlaceBet("u2", 60))
	a.Equal(g.Pot(), bets())
	a.NoError(g.PlaceBet("u3", 30))
	a.NoError(g.PlaceBet("u4", 35))
	a.Equal(g.Pot(), bets())

	dep, err := g.RemovePlayer("u3", RemovedExit)
	a.NoError(err)
	a.Equal(260, dep.Balance)
	a.Equal(g.Pot(), bets(), "departed bets stay in the pot")

	a.NoError(g.Fold("u1"))
	a.NoError(g.Fold("u2"))

	result := g.LastResult()
	a.Equal("u4", result.WinnerUserID)
	a.Equal(rakeOf(result.Pot, 0.1), result.Rake)

	total := result.Rake + dep.Balance
	for _, p := range g.participants {
		total += p.balance
	}
	a.Equal(2045, total)
}

func TestGame_PublicAndPrivateState(t *testing.T) {
	a := assert.New(t)
	g := newTestGame(t, testOptions(), 1000, 1000)
	a.True(g.StartGame())

	ps := g.PublicState()
	a.Equal(StatePlaying, ps.State)
	a.Equal("u1", ps.TurnUserID)
	a.Len(ps.Participants, 2)
	a.Equal(3, ps.Participants[1].CardCount)

	priv, err := g.PrivateState("u1")
	a.NoError(err)
	a.Equal(990, priv.Balance)
	a.Nil(priv.Hand, "blind players do not see their cards")
	a.True(priv.YourTurn)
	a.NotNil(priv.BetOptions)

	a.NoError(g.SeeCards("u2"))
	priv, err = g.PrivateState("u2")
	a.NoError(err)
	a.Len(priv.Hand, 3)
	a.NotEmpty(priv.HandName)
	a.False(priv.YourTurn)
	a.Nil(priv.BetOptions)

	_, err = g.PrivateState("u3")
	a.ErrorIs(err, ErrPlayerNotFound)
}

func TestGame_LogChan(t *testing.T) {
	g := newTestGame(t, testOptions(), 1000, 1000)
	assert.True(t, g.StartGame())

	// two joins and the deal
	for i := 0; i < 3; i++ {
		select {
		case msgs := <-g.LogChan():
			assert.NotEmpty(t, msgs)
		default:
			t.Fatal("expected a log message")
		}
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.TurnTimeLimit = 0
	opts.Rake = 0
	return opts
}

// newTestGame returns a waiting game with players u1..uN seated in order
func newTestGame(t *testing.T, opts Options, balances ...int) *Game {
	t.Helper()

	g, err := NewGame(logrus.StandardLogger(), "room-1", opts)
	require.NoError(t, err)
	g.SetGenerator(rng.NewSeeded(1))

	for i, balance := range balances {
		userID := fmt.Sprintf("u%d", i+1)
		_, err := g.Join("c"+userID, userID, "Player "+userID, balance, "")
		require.NoError(t, err)
	}

	return g
}

func setHands(g *Game, hands ...string) {
	for i, hand := range hands {
		g.participants[i].hand = deck.CardsFromString(hand)
	}
}

func balanceOf(g *Game, userID string) int {
	balance, _ := g.Balance(userID)
	return balance
}
