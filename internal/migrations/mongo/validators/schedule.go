package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	timeOfDayPattern   = `^([01]\d|2[0-3]):[0-5]\d(:00)?$`
	closingTimePattern = `^(([01]\d|2[0-3]):[0-5]\d|24:00)(:00)?$`
)

var WorkingHoursValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"technician_id",
			"day_of_week",
			"start_time",
			"end_time",
			"is_active",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"technician_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"day_of_week": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  6,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timeOfDayPattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  closingTimePattern,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var BlackoutPeriodValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"technician_id",
			"start_datetime",
			"end_datetime",
			"title",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"technician_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_datetime": bson.M{
				"bsonType": "date",
			},

			"end_datetime": bson.M{
				"bsonType": "date",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"period_type": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},
		},
	},
}

var BusinessSettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"slot_duration",
			"is_accepting_bookings",
			"advance_booking_days",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"slot_duration": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  240,
			},

			"is_accepting_bookings": bson.M{
				"bsonType": "bool",
			},

			"advance_booking_days": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  365,
			},
		},
	},
}
