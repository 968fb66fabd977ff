/*
包 database 提供基于 GORM 的 SQLite 连接池调优与探活。

向量索引落在单个 SQLite 文件上，写入方必须串行化；本包把
底层 sql.DB 的连接数压到单写者模式，并提供 PingContext 探活
供就绪检查使用。
*/
package database
