package models

// SiteSettingsID is the _id of the single settings document.
const SiteSettingsID = "site"

// Settings are the shop-wide values edited in the back office.
type Settings struct {
	ID           string `bson:"_id" json:"-"`
	StoreName    string `bson:"store_name" json:"store_name"`
	SupportEmail string `bson:"support_email" json:"support_email"`
	Phone        string `bson:"phone" json:"phone"`
	Address      string `bson:"address" json:"address"`
	Currency     string `bson:"currency" json:"currency"`
	Banner       string `bson:"banner" json:"banner"`
}
