package validators

import "go.mongodb.org/mongo-driver/bson"

var RequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"title", "organizer", "slot_duration_min", "max_selections_per_person", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":   bson.M{"bsonType": "objectId"},
			"title": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},
			"organizer":  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
			"recipients": bson.M{"bsonType": "array"},
			"slot_duration_min": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  1440,
			},
			"window_start": bson.M{"bsonType": "date"},
			"window_end":   bson.M{"bsonType": "date"},
			"max_selections_per_person": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  50,
			},
			"status": bson.M{
				"enum": []string{"open", "closed"},
			},
			"created_at": bson.M{"bsonType": "date"},
			"closed_at":  bson.M{"bsonType": "date"},
		},
	},
}
