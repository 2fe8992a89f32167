package config

type BuildType int

const (
	RELEASE BuildType = iota
	DEBUG
)

func (bt BuildType) String() string {
	switch bt {
	case RELEASE:
		return "release"
	case DEBUG:
		return "debug"
	}
	return "unknown"
}

// LinkFlags are the extra flags handed to the C compiler driver when
// linking.
func (bt BuildType) LinkFlags() []string {
	if bt == RELEASE {
		return []string{"-O2", "-s"}
	}
	return nil
}

var DEV bool

func SetDevMode(dev bool) {
	DEV = dev
}
