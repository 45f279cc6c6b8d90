package validators

import "go.mongodb.org/mongo-driver/bson"

var InviteValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"request_id", "token", "status", "claimed_count", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"request_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"token": bson.M{
				"bsonType":  "string",
				"minLength": 22,
			},
			"recipient": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},
			"status": bson.M{
				"enum": []string{"pending", "responded"},
			},
			"claimed_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},
			"details":      bson.M{"bsonType": "object"},
			"created_at":   bson.M{"bsonType": "date"},
			"responded_at": bson.M{"bsonType": "date"},
		},
	},
}
