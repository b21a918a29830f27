// Package adapter parses scanner output into the parsed-record types
// the ingest service consumes. Parsers work on captured output only:
// nmap XML files, arp/ip-neigh listings, ss/netstat listings. Nothing
// here executes a scan.
package adapter
