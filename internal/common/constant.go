package common

// DefaultPassword is assigned to newly created accounts and to the seeded
// directory on first run. Users are prompted to change it after login.
const DefaultPassword = "12345678"
