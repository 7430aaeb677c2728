package api

// Nilflags for Alloc and Realloc, flags are reserved for future use.
const Nilflags = 0
