package portsmock

//go:generate mockgen -source=../ports.go -destination=portsmock.go -package=portsmock

// To regenerate the mocks, run:
//   go generate ./internal/ports/portsmock
