package game

import (
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// GameResult is the outcome derived from a board. It is never stored.
type GameResult string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game results
	ResultInProgress GameResult = "in_progress"
	ResultWinner     GameResult = "winner"
	ResultDraw       GameResult = "draw"

	// Board boundaries
	CellMin   = 0
	CellMax   = 8
	BoardSize = 9
	BoardSide = 3

	DrawStatus = "DRAW!"
)

// Lines lists every winning triple in the order CheckWinner scans them:
// rows, then columns, then the two diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]PlayerMark

// NextMark returns the mark that plays next: X when an even number of cells
// is filled, O otherwise.
func NextMark(board Board) PlayerMark {
	if countMarks(board)%2 == 0 {
		return PlayerX
	}
	return PlayerO
}

// CheckWinner returns the mark of the first uniform, non-empty line, or None.
func CheckWinner(board Board) PlayerMark {
	for _, line := range Lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != None && a == b && b == c {
			return a
		}
	}
	return None
}

// IsBoardFull checks if every cell holds a mark.
func IsBoardFull(board Board) bool {
	return countMarks(board) == BoardSize
}

// Result derives the game outcome. The mark is only set for ResultWinner.
func Result(board Board) (GameResult, PlayerMark) {
	if winner := CheckWinner(board); winner != None {
		return ResultWinner, winner
	}
	if IsBoardFull(board) {
		return ResultDraw, None
	}
	return ResultInProgress, None
}

// Status returns the human-readable status line shown above the board.
func Status(board Board) string {
	if winner := CheckWinner(board); winner != None {
		return fmt.Sprintf("Winner: %s", winner)
	}
	if IsBoardFull(board) {
		return DrawStatus
	}
	return fmt.Sprintf("Next player: %s", NextMark(board))
}

// ValidCell reports whether index addresses a cell of the board.
func ValidCell(index int) bool {
	return index >= CellMin && index <= CellMax
}

// Place returns a copy of the board with the next mark written at index.
// The move is refused, and the board returned unchanged, when the index is
// out of range, the cell is occupied or the game already has a winner.
func (b Board) Place(index int) (Board, bool) {
	if !ValidCell(index) || b[index] != None || CheckWinner(b) != None {
		return b, false
	}
	next := b
	next[index] = NextMark(b)
	return next, true
}

// Rows converts the board to a 3x3 grid for rendering.
func (b Board) Rows() [BoardSide][BoardSide]PlayerMark {
	var rows [BoardSide][BoardSide]PlayerMark
	for i, mark := range b {
		rows[i/BoardSide][i%BoardSide] = mark
	}
	return rows
}

// String encodes the board as nine runes, '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)
	for _, mark := range b {
		if mark == None {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(string(mark))
	}
	return sb.String()
}

// ParseBoard is the inverse of Board.String. Whitespace and '/' separators
// are ignored so boards can be written one row at a time.
func ParseBoard(s string) (Board, error) {
	var board Board
	i := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '/':
			continue
		}
		if i >= BoardSize {
			return Board{}, fmt.Errorf("board %q has more than %d cells", s, BoardSize)
		}
		switch r {
		case 'X', 'x':
			board[i] = PlayerX
		case 'O', 'o':
			board[i] = PlayerO
		case '.', '_', '-':
			board[i] = None
		default:
			return Board{}, fmt.Errorf("board %q: invalid cell %q at %d", s, r, i)
		}
		i++
	}
	if i != BoardSize {
		return Board{}, fmt.Errorf("board %q has %d cells, want %d", s, i, BoardSize)
	}
	return board, nil
}

func countMarks(board Board) int {
	n := 0
	for _, mark := range board {
		if mark != None {
			n++
		}
	}
	return n
}
