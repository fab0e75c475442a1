package types

// Contact is a name/number pair with a store-assigned identity.
// Names are not unique; two contacts may share a name and even a number.
type Contact struct {
	ID     int64  `json:"id"`     // Assigned by the record store on insert, never reused.
	Name   string `json:"name"`   // Required, non-empty.
	Number string `json:"number"` // Required, non-empty.
}

// Validate performs the presence checks presentation layers apply before
// calling Directory.Add. Returns ErrInvalidName or ErrInvalidNumber.
// No other normalization or format checking is done.
func (c Contact) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	if c.Number == "" {
		return ErrInvalidNumber
	}
	return nil
}
