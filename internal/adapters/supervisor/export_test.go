package supervisor

// Environment exposes environment for tests.
var Environment = environment
