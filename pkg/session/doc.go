/*
Package session serializes access to todo lists.

Every list lives under a namespace key. The Manager holds one in-process lock
per namespace, reference counted so idle namespaces cost nothing, and can add
a distributed lock so several replicas sharing one store take turns on the
same list.
*/
package session
