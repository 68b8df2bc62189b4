// Пакет version хранит сведения о сборке, заполняемые через -ldflags.
package version

import "fmt"

const service = "shopcore"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// String — однострочное представление для стартового лога и health-ответов.
func String() string {
	return fmt.Sprintf("%s version=%s commit=%s date=%s", service, version, commit, date)
}
