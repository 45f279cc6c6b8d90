package validators

import "go.mongodb.org/mongo-driver/bson"

var SlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"request_id", "start_time", "end_time", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"request_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"start_time": bson.M{"bsonType": "date"},
			"end_time":   bson.M{"bsonType": "date"},
			"status": bson.M{
				"enum": []string{"available", "booked"},
			},
			"claimed_by": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"created_at": bson.M{"bsonType": "date"},
			"claimed_at": bson.M{"bsonType": "date"},
		},
	},
}
