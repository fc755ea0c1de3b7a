package utils

//run redis (conversation history, ingestion job records)
//docker run -p 6379:6379 -d redis

//run qdrant (optional semantic answer cache)
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
