// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game socket.
const (
	BadSubprotocolError = 3000 // Client connected without the "game" subprotocol.
	InvalidPlayerError  = 3002 // The requested player is not seated at this table.
	InvalidGameIDError  = 3003 // The game id in the URL does not exist.
)
