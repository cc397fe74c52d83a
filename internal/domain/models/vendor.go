package models

// VendorAvailability is the subset of the vendor payload the aggregator interprets.
// Pointers distinguish an absent field from a zero value.
type VendorAvailability struct {
	ValidityEnds *int
	SubCampaigns []VendorSubCampaign
}

// VendorSubCampaign is one sub-item of a vendor payload.
type VendorSubCampaign struct {
	UpperLimit *int
}
