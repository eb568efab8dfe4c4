package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tasksage/tasksage/pkg/core"
)

func TestParsePriority(t *testing.T) {
	assert.Equal(t, core.PriorityLow, core.ParsePriority(" LOW "))
	assert.Equal(t, core.PriorityHigh, core.ParsePriority("high"))
	assert.Equal(t, core.PriorityMedium, core.ParsePriority("medium"))
	assert.Equal(t, core.PriorityMedium, core.ParsePriority("whatever"))
	assert.Equal(t, core.PriorityMedium, core.ParsePriority(""))
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, core.PriorityHigh.Rank(), core.PriorityMedium.Rank())
	assert.Greater(t, core.PriorityMedium.Rank(), core.PriorityLow.Rank())
	assert.Equal(t, 0, core.Priority("bogus").Rank())
}

func TestUserShortName(t *testing.T) {
	assert.Equal(t, "Ada", core.User{DisplayName: "Ada", Email: "ada@x.com"}.ShortName())
	assert.Equal(t, "ada", core.User{Email: "ada@x.com"}.ShortName())
	assert.Equal(t, "weird", core.User{Email: "weird"}.ShortName())
	assert.Equal(t, "Guest", core.User{}.ShortName())
}

func TestGreeting(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 1, 15, hour, 30, 0, 0, time.UTC)
	}
	assert.Equal(t, "Good Morning", core.Greeting(at(0)))
	assert.Equal(t, "Good Morning", core.Greeting(at(11)))
	assert.Equal(t, "Good Afternoon", core.Greeting(at(12)))
	assert.Equal(t, "Good Afternoon", core.Greeting(at(16)))
	assert.Equal(t, "Good Evening", core.Greeting(at(17)))
	assert.Equal(t, "Good Evening", core.Greeting(at(23)))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, core.WordCount(""))
	assert.Equal(t, 0, core.WordCount("   \n\t "))
	assert.Equal(t, 3, core.WordCount("  one   two\nthree "))
}
