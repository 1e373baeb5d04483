package report

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_Validate(t *testing.T) {
	floor, busyness, notes, err := Submission{Floor: " 2nd Floor ", Notes: "  quiet corner  "}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "2nd Floor", floor)
	assert.Equal(t, DefaultBusyness, busyness)
	assert.Equal(t, "quiet corner", notes)

	_, busyness, _, err = Submission{Floor: "1st Floor", Busyness: "5"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, 5, busyness)
}

func TestSubmission_ValidateErrors(t *testing.T) {
	_, _, _, err := Submission{Busyness: "3"}.Validate()
	assert.ErrorIs(t, err, ErrFloorRequired)

	for _, b := range []string{"0", "6", "2.5", "loud"} {
		_, _, _, err := Submission{Floor: "1st Floor", Busyness: b}.Validate()
		assert.ErrorIs(t, err, ErrInvalidBusyness, "busyness %q", b)
	}
}

func TestStore_NewestFirstAndBounded(t *testing.T) {
	s := NewStore(2)

	for i := 1; i <= 3; i++ {
		_, err := s.Add(Submission{Floor: fmt.Sprintf("%d Floor", i)})
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "3 Floor", list[0].Floor)
	assert.Equal(t, "2 Floor", list[1].Floor)
	assert.Equal(t, 2, s.Count())
}

func TestStore_RejectsInvalid(t *testing.T) {
	s := NewStore(5)
	_, err := s.Add(Submission{})
	assert.ErrorIs(t, err, ErrFloorRequired)
	assert.Zero(t, s.Count())
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(Submission{Floor: "1st Floor", Busyness: "4"})
			_ = s.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
}
