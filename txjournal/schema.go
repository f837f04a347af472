package txjournal

var sendTable = `CREATE TABLE IF NOT EXISTS send (
		id CHAR(36) PRIMARY KEY NOT NULL,
		asset VARCHAR(8) NOT NULL,
		network VARCHAR(16) NOT NULL,
		sender VARCHAR(64) NOT NULL,
		receiver VARCHAR(64) NOT NULL,
		amount BIGINT NOT NULL,
		fee BIGINT NOT NULL,
		txId CHAR(64),
		status VARCHAR(10) NOT NULL,
		confirmations BIGINT NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		createdAt BIGINT NOT NULL,
		updatedAt BIGINT NOT NULL,
		CONSTRAINT chk_status CHECK (status IN ('pending', 'broadcast', 'confirmed', 'failed')),
		CONSTRAINT chk_amount CHECK (amount > 0),
		CONSTRAINT chk_fee CHECK (fee >= 0)
	);
	CREATE INDEX IF NOT EXISTS idx_send_txId ON send(txId);
	CREATE INDEX IF NOT EXISTS idx_send_asset ON send(asset, createdAt);`

const entryColumns = " id, asset, network, sender, receiver, amount, fee, txId, status, confirmations, error, createdAt, updatedAt "
