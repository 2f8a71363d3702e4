/* result.go
 * Contains the conversion of a lichess winner into the result string stored by heltour
 */

package logic

// Result strings
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
)

// ParseResult converts the winner of a finished game into a result. Any winner other than white or black is a draw
func ParseResult(winner string) string {
	switch winner {
	case "white":
		return ResultWhiteWins
	case "black":
		return ResultBlackWins
	default:
		return ResultDraw
	}
}
