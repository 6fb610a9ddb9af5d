package session

// Notices shown to the player.
const (
	msgYourColor     = "Your color: %s"
	msgWaiting       = "Waiting for second player..."
	msgYourMove      = "Your move!"
	msgContinue      = "Your move! Keep capturing with the same piece."
	msgPrompt        = "Enter move as 'r1 c1 r2 c2' or 'quit': "
	msgOppTurn       = "Waiting for opponent move..."
	msgMoveInvalid   = "Server: move invalid."
	msgMoveOK        = "Move accepted."
	msgOpponentMoved = "Opponent made a move."
	msgYouWin        = "=== YOU WIN! ==="
	msgYouLose       = "=== YOU LOSE ==="
	msgDraw          = "=== DRAW ==="
	msgOpponentLeft  = "Opponent left the game."
	msgServerFull    = "Server is full, try again later."
	msgNoMoreGames   = "Server has no free game slots, try again later."
	msgServerError   = "Error from server: %s"
	msgServerClosed  = "Server closed connection."
	msgNeedFour      = "Invalid format. Need 4 numbers."
	msgNeedIntegers  = "All coordinates must be integers."
	msgInvalidBoard  = "Invalid board length: %d"
	msgInputClosed   = "Input closed, leaving the game."
)
