package store

const schema = `
CREATE TABLE IF NOT EXISTS news (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    title           TEXT NOT NULL,
    body            TEXT NOT NULL,
    summary         TEXT NOT NULL,
    source          TEXT NOT NULL,
    url             TEXT NOT NULL UNIQUE,
    published_at    DATETIME NOT NULL,
    created_at      DATETIME NOT NULL,
    hn_id           INTEGER,
    score           INTEGER,
    comments_count  INTEGER,
    priority        INTEGER,
    image_url       TEXT,
    search_position INTEGER,
    from_serper     BOOLEAN
);

CREATE INDEX IF NOT EXISTS idx_news_source ON news(source);
CREATE INDEX IF NOT EXISTS idx_news_created_at ON news(created_at);
`
