package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongotx "salonbook/pkg/db/mongo"
)

func TestDefinitions_CoverEveryCollection(t *testing.T) {
	names := map[string]bool{}
	for _, def := range Definitions() {
		assert.NotNil(t, def.Validator, def.Name)
		assert.Contains(t, def.Validator, "$jsonSchema", def.Name)
		names[def.Name] = true
	}

	for _, want := range []string{
		mongotx.BookingsCollection,
		mongotx.WorkingHoursCollection,
		mongotx.BlackoutPeriodsCollection,
		mongotx.BusinessSettingsCollection,
		mongotx.SlotLocksCollection,
	} {
		assert.True(t, names[want], "missing definition for %s", want)
	}
}

func TestWorkingHoursIndex_UniqueWhileActive(t *testing.T) {
	require.Len(t, WorkingHoursIndexes, 1)
	idx := WorkingHoursIndexes[0]

	assert.Equal(t, bson.D{{Key: "technician_id", Value: 1}, {Key: "day_of_week", Value: 1}}, idx.Keys)
	opts := mergeIndexOptions(idx)
	require.NotNil(t, opts.Unique)
	assert.True(t, *opts.Unique)
	assert.Equal(t, bson.M{"is_active": true}, opts.PartialFilterExpression)
}

func TestSlotLocksIndex_ExpiresImmediately(t *testing.T) {
	require.Len(t, SlotLocksIndexes, 1)
	opts := mergeIndexOptions(SlotLocksIndexes[0])

	require.NotNil(t, opts.ExpireAfterSeconds)
	assert.EqualValues(t, 0, *opts.ExpireAfterSeconds)
}

func TestBookingsIndex_AppointmentNumberUnique(t *testing.T) {
	var found bool
	for _, idx := range BookingsIndexes {
		if keys, ok := idx.Keys.(bson.D); ok && len(keys) == 1 && keys[0].Key == "appointment_number" {
			opts := mergeIndexOptions(idx)
			require.NotNil(t, opts.Unique)
			assert.True(t, *opts.Unique)
			found = true
		}
	}
	assert.True(t, found)
}

func mergeIndexOptions(idx mongo.IndexModel) *options.IndexOptions {
	if idx.Options == nil {
		return options.Index()
	}
	return idx.Options
}
