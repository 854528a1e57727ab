package queries

const (
	QueryCreateMessage = `
		INSERT INTO messages (sender_id, recipient_id, text, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	QueryGetMessageByID = `
		SELECT id, sender_id, recipient_id, text, timestamp
		FROM messages
		WHERE id = $1;
	`
	QueryListMessagesBetween = `
		SELECT id, sender_id, recipient_id, text, timestamp
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY timestamp ASC, id ASC;
	`
	QueryListMessagesBySender = `
		SELECT id, sender_id, recipient_id, text, timestamp
		FROM messages
		WHERE sender_id = $1
		ORDER BY timestamp ASC, id ASC;
	`
	QueryListMessagesByParticipant = `
		SELECT id, sender_id, recipient_id, text, timestamp
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY timestamp ASC, id ASC;
	`
	QueryDeleteMessage = `DELETE FROM messages WHERE id = $1;`
)
