package phone

import (
	"regexp"
	"sync"
)

var (
	mu       sync.RWMutex
	profiles = map[string]Profile{}
)

// Register adds or replaces the profile for its country code.
func Register(p Profile) {
	mu.Lock()
	defer mu.Unlock()
	profiles[p.Country] = p
}

// Lookup returns the profile registered for the ISO country code.
func Lookup(country string) (Profile, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := profiles[country]
	if !ok {
		return Profile{}, ErrUnknownCountry
	}
	return p, nil
}

var ukMobile = regexp.MustCompile(`^7\d{9}$`)

func init() {
	// UK mobiles must start with 7 after the trunk zero is stripped;
	// a plain length check would accept landlines the backend rejects.
	Register(Profile{
		Country:     "GB",
		CallingCode: "44",
		Validate:    func(d string) bool { return ukMobile.MatchString(d) },
		Example:     "07912 345678",
	})
	Register(Profile{Country: "US", CallingCode: "1", Lengths: []int{10}, Example: "(212) 555-0123"})
	Register(Profile{Country: "CA", CallingCode: "1", Lengths: []int{10}, Example: "(416) 555-0123"})
	Register(Profile{Country: "IE", CallingCode: "353", Lengths: []int{9}, Example: "085 123 4567"})
	Register(Profile{Country: "AU", CallingCode: "61", Lengths: []int{9}, Example: "0412 345 678"})
	Register(Profile{Country: "NZ", CallingCode: "64", Lengths: []int{8, 9, 10}, Example: "021 123 456"})
	Register(Profile{Country: "IN", CallingCode: "91", Lengths: []int{10}, Example: "98765 43210"})
	Register(Profile{Country: "DE", CallingCode: "49", Lengths: []int{10, 11}, Example: "0151 23456789"})
	Register(Profile{Country: "FR", CallingCode: "33", Lengths: []int{9}, Example: "06 12 34 56 78"})
	Register(Profile{Country: "ES", CallingCode: "34", Lengths: []int{9}, Example: "612 34 56 78"})
	Register(Profile{Country: "IT", CallingCode: "39", Lengths: []int{9, 10}, Example: "312 345 6789"})
	Register(Profile{Country: "NL", CallingCode: "31", Lengths: []int{9}, Example: "06 12345678"})
	Register(Profile{Country: "PT", CallingCode: "351", Lengths: []int{9}, Example: "912 345 678"})
	Register(Profile{Country: "BD", CallingCode: "880", Lengths: []int{10}, Example: "01712 345678"})
	Register(Profile{Country: "PK", CallingCode: "92", Lengths: []int{10}, Example: "0301 2345678"})
	Register(Profile{Country: "NG", CallingCode: "234", Lengths: []int{10}, Example: "0803 123 4567"})
	Register(Profile{Country: "ZA", CallingCode: "27", Lengths: []int{9}, Example: "082 123 4567"})
	Register(Profile{Country: "BR", CallingCode: "55", Lengths: []int{10, 11}, Example: "(11) 91234-5678"})
}
