package simulation_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/gamedata"
	"github.com/KirkDiggler/rpg-loadout/internal/orchestrators/loadout"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/clock"
	savegamerepo "github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame"
	"github.com/KirkDiggler/rpg-loadout/internal/simulation"
)

// cyclingRoller replays a fixed sequence, folding each value into 1..size
type cyclingRoller struct {
	values []int
	next   int
}

func (c *cyclingRoller) Roll(size int) (int, error) {
	v := c.values[c.next%len(c.values)]
	c.next++
	return v%size + 1, nil
}

func (c *cyclingRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = c.Roll(size)
	}
	return out, nil
}

func newService(t *testing.T, data *gamedata.GameData, capacity int) loadout.Service {
	svc, err := loadout.NewOrchestrator(&loadout.Config{
		Repository:   savegamerepo.NewInMemory(clock.New()),
		GameData:     data,
		Capacity:     capacity,
		ReserveSlack: 2,
	})
	require.NoError(t, err)
	return svc
}

func TestRunKeepsInvariants(t *testing.T) {
	data, err := gamedata.Default()
	require.NoError(t, err)

	testCases := []struct {
		name     string
		roller   dice.Roller
		capacity int
	}{
		{name: "scripted", roller: &cyclingRoller{values: []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9}}, capacity: 6},
		{name: "scripted tight inventory", roller: &cyclingRoller{values: []int{0, 7, 2, 8, 1, 8, 2, 8}}, capacity: 1},
		{name: "random", roller: dice.DefaultRoller, capacity: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner, err := simulation.NewRunner(&simulation.Config{
				Service:    newService(t, data, tc.capacity),
				GameData:   data,
				Roller:     tc.roller,
				PlayerID:   "sim-player",
				Operations: 300,
				MaxLevel:   10,
			})
			require.NoError(t, err)

			report, err := runner.Run(context.Background())
			require.NoError(t, err)
			assert.True(t, report.OK(), "violations: %v", report.Violations)
			assert.Zero(t, report.Unsaved)

			total := 0
			for _, n := range report.Operations {
				total += n
			}
			assert.Equal(t, 300, total)
		})
	}
}

func TestRunClosesSession(t *testing.T) {
	data, err := gamedata.Default()
	require.NoError(t, err)
	svc := newService(t, data, 5)

	runner, err := simulation.NewRunner(&simulation.Config{
		Service:    svc,
		GameData:   data,
		Roller:     &cyclingRoller{values: []int{0}},
		PlayerID:   "sim-player",
		Operations: 5,
		MaxLevel:   3,
	})
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	_, err = svc.GetLoadout(context.Background(), &loadout.GetLoadoutInput{PlayerID: "sim-player"})
	assert.True(t, errors.IsNotFound(err))
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := simulation.NewRunner(&simulation.Config{PlayerID: "p"})
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = simulation.NewRunner(nil)
	assert.True(t, errors.IsInvalidArgument(err))
}
