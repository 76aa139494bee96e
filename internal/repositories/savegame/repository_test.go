package savegame_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/clock"
	savegamerepo "github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
	"github.com/KirkDiggler/rpg-loadout/internal/testutils"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type RepositoryTestSuite struct {
	suite.Suite
	newRepo func(c clock.Clock) savegamerepo.Repository
	clock   *clock.Fixed
	repo    savegamerepo.Repository
	ctx     context.Context
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(c clock.Clock) savegamerepo.Repository {
			client, cleanup := testutils.CreateTestRedisClient(t)
			t.Cleanup(cleanup)

			repo, err := savegamerepo.NewRedis(&savegamerepo.RedisConfig{
				Client: client,
				Clock:  c,
			})
			require.NoError(t, err)
			return repo
		},
	})
}

func TestInMemoryRepositorySuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(c clock.Clock) savegamerepo.Repository {
			return savegamerepo.NewInMemory(c)
		},
	})
}

func (s *RepositoryTestSuite) SetupTest() {
	s.clock = clock.NewFixed(testNow)
	s.repo = s.newRepo(s.clock)
	s.ctx = context.Background()
}

func testRecord() *savegame.Record {
	return &savegame.Record{
		Version: savegame.VersionLatest,
		Inventory: []*equipment.Stack{
			{ItemID: testutils.ItemSword, Count: 1, Level: 2},
			nil,
			{ItemID: testutils.ItemHealthPot, Count: 7, Level: 1},
		},
		Slots: map[equipment.SlotKey]equipment.ItemID{
			equipment.NewSlotKey(equipment.CategoryWeapon, 0): testutils.ItemSword,
			equipment.NewSlotKey(equipment.CategorySkill, 0):  "",
		},
	}
}

func (s *RepositoryTestSuite) TestSaveAndGet() {
	out, err := s.repo.Save(s.ctx, savegamerepo.SaveInput{
		PlayerID: testutils.TestPlayerID,
		Record:   testRecord(),
	})
	s.Require().NoError(err)
	s.Equal(testNow.Unix(), out.Record.SavedAt)
	s.Equal(testutils.TestPlayerID, out.Record.UserID, "user id defaults to the player")

	got, err := s.repo.Get(s.ctx, savegamerepo.GetInput{PlayerID: testutils.TestPlayerID})
	s.Require().NoError(err)
	s.Equal(out.Record, got.Record)
	s.Nil(got.Record.Inventory[1], "holes survive storage")
}

func (s *RepositoryTestSuite) TestSaveReplacesPrevious() {
	_, err := s.repo.Save(s.ctx, savegamerepo.SaveInput{PlayerID: testutils.TestPlayerID, Record: testRecord()})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	rec := testRecord()
	rec.Inventory = rec.Inventory[:1]
	_, err = s.repo.Save(s.ctx, savegamerepo.SaveInput{PlayerID: testutils.TestPlayerID, Record: rec})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, savegamerepo.GetInput{PlayerID: testutils.TestPlayerID})
	s.Require().NoError(err)
	s.Equal(testNow.Add(time.Minute).Unix(), got.Record.SavedAt)
	s.Len(got.Record.Inventory, 1)

	list, err := s.repo.List(s.ctx, savegamerepo.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{testutils.TestPlayerID}, list.PlayerIDs)
}

func (s *RepositoryTestSuite) TestSaveDoesNotKeepCallerRecord() {
	rec := testRecord()
	_, err := s.repo.Save(s.ctx, savegamerepo.SaveInput{PlayerID: testutils.TestPlayerID, Record: rec})
	s.Require().NoError(err)

	rec.Inventory[0].Count = 99
	s.Zero(rec.SavedAt)

	got, err := s.repo.Get(s.ctx, savegamerepo.GetInput{PlayerID: testutils.TestPlayerID})
	s.Require().NoError(err)
	s.Equal(1, got.Record.Inventory[0].Count)
}

func (s *RepositoryTestSuite) TestSaveValidation() {
	_, err := s.repo.Save(s.ctx, savegamerepo.SaveInput{Record: testRecord()})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, savegamerepo.SaveInput{PlayerID: testutils.TestPlayerID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, savegamerepo.GetInput{PlayerID: "nobody"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, savegamerepo.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestDeleteAndList() {
	for _, id := range []string{"player-b", "player-a"} {
		_, err := s.repo.Save(s.ctx, savegamerepo.SaveInput{PlayerID: id, Record: testRecord()})
		s.Require().NoError(err)
	}

	list, err := s.repo.List(s.ctx, savegamerepo.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{"player-a", "player-b"}, list.PlayerIDs)

	_, err = s.repo.Delete(s.ctx, savegamerepo.DeleteInput{PlayerID: "player-a"})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, savegamerepo.DeleteInput{PlayerID: "player-a"})
	s.True(errors.IsNotFound(err))

	list, err = s.repo.List(s.ctx, savegamerepo.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{"player-b"}, list.PlayerIDs)
}

func TestRedisRepositoryStorageLayout(t *testing.T) {
	var mr *miniredis.Miniredis
	client, cleanup := testutils.CreateTestRedisClientWithContext(t, func(m *miniredis.Miniredis) {
		mr = m
	})
	defer cleanup()

	repo, err := savegamerepo.NewRedis(&savegamerepo.RedisConfig{Client: client, Clock: clock.NewFixed(testNow)})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = repo.Save(ctx, savegamerepo.SaveInput{PlayerID: testutils.TestPlayerID, Record: testRecord()})
	require.NoError(t, err)

	raw, err := mr.Get(savegamerepo.GetKey(testutils.TestPlayerID))
	require.NoError(t, err)
	assert.Contains(t, raw, `"weapon:0":"weapon_sword"`)
	assert.Contains(t, raw, `"inventory":[{"item_id":"weapon_sword","count":1,"level":2},null,`)

	require.NoError(t, mr.Set(savegamerepo.GetKey("corrupt"), "{not json"))
	_, err = repo.Get(ctx, savegamerepo.GetInput{PlayerID: "corrupt"})
	assert.Equal(t, errors.CodeDataLoss, errors.GetCode(err))
}

func TestNewRedisValidation(t *testing.T) {
	testCases := []struct {
		name   string
		config *savegamerepo.RedisConfig
	}{
		{name: "nil config", config: nil},
		{name: "nil client", config: &savegamerepo.RedisConfig{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := savegamerepo.NewRedis(tc.config)
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}
