package tasksage

// Version exposes the version of the library.
// Kept in sync with release tags.
const Version = "0.1.0"
