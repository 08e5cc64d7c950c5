package teenpatti

import (
	"fmt"
	"sort"
	"strings"

	"teenpatti-server/pkg/deck"
)

// HandSize is the number of cards dealt to each player
const HandSize = 3

// HandRank is the class of a three-card hand
type HandRank int

// hand classes, weakest first
const (
	HighCard HandRank = iota
	Pair
	Color
	Sequence
	PureSequence
	Trail
)

func (h HandRank) String() string {
	switch h {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case Color:
		return "Color"
	case Sequence:
		return "Sequence"
	case PureSequence:
		return "Pure Sequence"
	case Trail:
		return "Trail"
	default:
		return "Unknown"
	}
}

// HandEvaluation is the classification of a hand
// The rank class dominates, Tiebreak orders hands within a class
type HandEvaluation struct {
	Rank     HandRank `json:"rank"`
	Tiebreak int      `json:"tiebreak"`
	Name     string   `json:"name"`
}

// lowSequenceHigh is the tiebreak of A-2-3, the lowest sequence
const lowSequenceHigh = 3

// Evaluate classifies a three card hand
// It panics if not given exactly three cards
func Evaluate(cards []deck.Card) HandEvaluation {
	if len(cards) != HandSize {
		panic(fmt.Sprintf("teenpatti: cannot evaluate %d cards", len(cards)))
	}

	sorted := sortDescending(cards)
	a, b, c := sorted[0].Rank, sorted[1].Rank, sorted[2].Rank
	name := handName(sorted)

	if a == b && b == c {
		return HandEvaluation{Rank: Trail, Tiebreak: a, Name: name}
	}

	flush := sorted[0].Suit == sorted[1].Suit && sorted[1].Suit == sorted[2].Suit
	high, straight := sequenceHigh(a, b, c)

	switch {
	case flush && straight:
		return HandEvaluation{Rank: PureSequence, Tiebreak: high, Name: name}
	case straight:
		return HandEvaluation{Rank: Sequence, Tiebreak: high, Name: name}
	case flush:
		return HandEvaluation{Rank: Color, Tiebreak: weightedRanks(a, b, c), Name: name}
	}

	if pair, kicker, ok := pairOf(a, b, c); ok {
		return HandEvaluation{Rank: Pair, Tiebreak: pair*100 + kicker, Name: name}
	}

	return HandEvaluation{Rank: HighCard, Tiebreak: weightedRanks(a, b, c), Name: name}
}

// Compare compares two evaluations and returns:
// 1 if a wins, -1 if b wins, 0 if tie
func Compare(a, b HandEvaluation) int {
	switch {
	case a.Rank > b.Rank:
		return 1
	case a.Rank < b.Rank:
		return -1
	case a.Tiebreak > b.Tiebreak:
		return 1
	case a.Tiebreak < b.Tiebreak:
		return -1
	}

	return 0
}

// CompareHands evaluates and compares two hands
func CompareHands(a, b []deck.Card) int {
	return Compare(Evaluate(a), Evaluate(b))
}

// HandName returns a human-readable description of the hand
func HandName(cards []deck.Card) string {
	return Evaluate(cards).Name
}

func sortDescending(cards []deck.Card) []deck.Card {
	sorted := append([]deck.Card{}, cards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	return sorted
}

// sequenceHigh expects ranks in descending order
func sequenceHigh(a, b, c int) (int, bool) {
	if a == b+1 && b == c+1 {
		return a, true
	}

	if a == deck.Ace && b == 3 && c == 2 {
		return lowSequenceHigh, true
	}

	return 0, false
}

// pairOf expects ranks in descending order
func pairOf(a, b, c int) (pair int, kicker int, ok bool) {
	switch {
	case a == b:
		return a, c, true
	case b == c:
		return b, a, true
	}

	return 0, 0, false
}

func weightedRanks(a, b, c int) int {
	return a*10000 + b*100 + c
}

func handName(sorted []deck.Card) string {
	a, b, c := sorted[0].Rank, sorted[1].Rank, sorted[2].Rank

	if a == b && b == c {
		return "Trail of " + pluralRank(a)
	}

	flush := sorted[0].Suit == sorted[1].Suit && sorted[1].Suit == sorted[2].Suit
	high, straight := sequenceHigh(a, b, c)

	switch {
	case straight:
		run := fmt.Sprintf("%s-%s-%s", deck.RankName(high-2), deck.RankName(high-1), deck.RankName(high))
		if high == lowSequenceHigh {
			run = "A-2-3"
		}

		if flush {
			return fmt.Sprintf("Pure Sequence (%s)", run)
		}

		return fmt.Sprintf("Sequence (%s)", run)
	case flush:
		return fmt.Sprintf("Color (%s %s)", rankRun(a, b, c), sorted[0].Suit.Symbol())
	}

	if pair, kicker, ok := pairOf(a, b, c); ok {
		return fmt.Sprintf("Pair of %s (%s kicker)", pluralRank(pair), deck.RankName(kicker))
	}

	return fmt.Sprintf("High Card (%s)", rankRun(a, b, c))
}

func rankRun(ranks ...int) string {
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = deck.RankName(r)
	}

	return strings.Join(names, "-")
}

var rankWords = map[int]string{
	2:          "Twos",
	3:          "Threes",
	4:          "Fours",
	5:          "Fives",
	6:          "Sixes",
	7:          "Sevens",
	8:          "Eights",
	9:          "Nines",
	10:         "Tens",
	deck.Jack:  "Jacks",
	deck.Queen: "Queens",
	deck.King:  "Kings",
	deck.Ace:   "Aces",
}

func pluralRank(rank int) string {
	return rankWords[rank]
}
