package dynamic

// AllowedPackages lists the standard library packages interpreted classes
// may import by default.
var AllowedPackages = map[string]bool{
	"bytes":         true,
	"errors":        true,
	"fmt":           true,
	"math":          true,
	"slices":        true,
	"maps":          true,
	"sort":          true,
	"strconv":       true,
	"strings":       true,
	"time":          true,
	"unicode":       true,
	"unicode/utf8":  true,
	"encoding/json": true,
	"regexp":        true,
}

// BlockedPackages are never importable, whatever the allow-list says.
var BlockedPackages = map[string]bool{
	"os":            true,
	"os/exec":       true,
	"syscall":       true,
	"unsafe":        true,
	"plugin":        true,
	"reflect":       true,
	"runtime/debug": true,
	"net":           true,
	"net/http":      true,
}

// IsPackageAllowed checks an import path against the default lists.
func IsPackageAllowed(pkg string) bool {
	if BlockedPackages[pkg] {
		return false
	}
	return AllowedPackages[pkg]
}
