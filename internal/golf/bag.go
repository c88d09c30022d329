package golf

import "fmt"

// Bag is an ordered roster of clubs with a cursor on the club in hand. The
// putter is always the last slot.
type Bag struct {
	clubs   []Club
	current int
}

// NewBag takes a copy of clubs. The cursor starts on the driver.
func NewBag(clubs []Club) (*Bag, error) {
	if len(clubs) == 0 {
		return nil, fmt.Errorf("%w: bag needs at least one club", ErrInvalidArgument)
	}
	b := &Bag{clubs: make([]Club, len(clubs))}
	copy(b.clubs, clubs)
	return b, nil
}

// RestoreBag rebuilds a bag with its cursor, e.g. from persisted state.
func RestoreBag(clubs []Club, current int) (*Bag, error) {
	b, err := NewBag(clubs)
	if err != nil {
		return nil, err
	}
	if err := b.SetCurrent(current); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bag) Len() int { return len(b.clubs) }

func (b *Bag) Clubs() []Club {
	out := make([]Club, len(b.clubs))
	copy(out, b.clubs)
	return out
}

func (b *Bag) Club(i int) Club { return b.clubs[i] }

func (b *Bag) Current() Club { return b.clubs[b.current] }

func (b *Bag) CurrentIndex() int { return b.current }

func (b *Bag) PutterIndex() int { return len(b.clubs) - 1 }

func (b *Bag) SetCurrent(i int) error {
	if i < 0 || i >= len(b.clubs) {
		return fmt.Errorf("%w: club index %d out of range [0, %d)", ErrInvalidArgument, i, len(b.clubs))
	}
	b.current = i
	return nil
}

// Increment moves to the next club, wrapping from the putter to the driver.
func (b *Bag) Increment() int {
	b.current = (b.current + 1) % len(b.clubs)
	return b.current
}

// Decrement moves to the previous club, wrapping from the driver to the putter.
func (b *Bag) Decrement() int {
	b.current = (b.current - 1 + len(b.clubs)) % len(b.clubs)
	return b.current
}

// SelectBest points the cursor at the club SelectClub picks.
func (b *Bag) SelectBest(remaining float64, onGreen bool) int {
	i, _ := SelectClub(remaining, onGreen, b.clubs)
	b.current = i
	return i
}

// SelectClub picks the club for a shot with remaining meters to the hole.
// On the green it is the putter. Otherwise it is the shortest non-putter club
// whose distance is strictly greater than remaining, or the driver when
// nothing reaches.
func SelectClub(remaining float64, onGreen bool, clubs []Club) (int, error) {
	if len(clubs) == 0 {
		return 0, fmt.Errorf("%w: empty roster", ErrInvalidArgument)
	}
	putter := len(clubs) - 1
	if onGreen {
		return putter, nil
	}
	for i := putter - 1; i >= 0; i-- {
		if remaining < clubs[i].Distance {
			return i, nil
		}
	}
	return 0, nil
}
