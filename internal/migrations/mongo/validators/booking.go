package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"appointment_number",
			"technician_id",
			"appointment_date",
			"start_time",
			"service_duration_minutes",
			"duration_minutes",
			"status",
			"client_name",
			"client_phone",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"appointment_number": bson.M{
				"bsonType": "string",
				"pattern":  `^APT-\d{8}-[0-9A-F]{6}$`,
			},

			"technician_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"appointment_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timeOfDayPattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  timeOfDayPattern,
			},

			"service_duration_minutes": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  1440,
			},

			"add_on_minutes": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items": bson.M{
					"bsonType": "int",
					"minimum":  0,
				},
			},

			"duration_minutes": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  1440,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"in_progress",
					"completed",
					"cancelled",
					"no_show",
				},
			},

			"client_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"client_phone": bson.M{
				"bsonType": "string",
			},

			"quoted_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

// SlotLockValidator keeps expires_at a date so the TTL index can reap it.
var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
